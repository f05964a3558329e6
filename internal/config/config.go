package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/wifctl/internal/core"
	"github.com/darmiel/wifctl/internal/validation"
)

// Load reads and parses the federation spec file at the given path.
// It returns the spec with defaults applied, or an error if
// loading/parsing/validation fails. Validation is atomic: a single bad field
// fails the whole file before anything downstream sees it.
func Load(path string) (*core.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a spec document from raw YAML bytes.
func Parse(data []byte) (*core.Spec, error) {
	var spec core.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec file: %w", err)
	}
	spec.ApplyDefaults()
	if err := validation.ValidateSpec(&spec); err != nil {
		return nil, fmt.Errorf("validating spec file: %w", err)
	}
	return &spec, nil
}
