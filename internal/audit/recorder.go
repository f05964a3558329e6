package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Entry is one recorded compile run.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	SpecPath   string    `json:"spec_path"`
	SpecDigest string    `json:"spec_digest"`

	ServiceAccounts int `json:"service_accounts"`
	TrustBindings   int `json:"trust_bindings"`
	Grants          int `json:"grants"`
	Lints           int `json:"lints"`
}

// NewEntry creates an entry with a fresh id and timestamp.
func NewEntry(specPath string, specData []byte) Entry {
	digest := sha256.Sum256(specData)
	return Entry{
		ID:         xid.New().String(),
		Time:       time.Now().UTC(),
		SpecPath:   specPath,
		SpecDigest: hex.EncodeToString(digest[:]),
	}
}

// Recorder persists compile run records.
type Recorder interface {
	Record(entry Entry) error
	Close() error
}

// FileRecorder appends records to a file as JSON lines.
type FileRecorder struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

var _ Recorder = (*FileRecorder)(nil)

func NewFileRecorder(path string) (*FileRecorder, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit record file: %w", err)
	}
	return &FileRecorder{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (f *FileRecorder) Record(entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.encoder.Encode(entry); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

func (f *FileRecorder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// NoopRecorder drops all records.
type NoopRecorder struct{}

var _ Recorder = (*NoopRecorder)(nil)

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (*NoopRecorder) Record(Entry) error { return nil }
func (*NoopRecorder) Close() error       { return nil }
