package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

const testSpec = `
project_id: acme-prod
project_number: 123456789
github_repository_owner: acme
service_accounts:
  ci:
    account_id: gh-ci-deploy
    repository_filter: widgets
    project_roles:
      - roles/run.admin
`

// A bad --audit path must fail before the plan is emitted, not after.
func TestCompileBadAuditPathFailsBeforeOutput(t *testing.T) {
	dir := t.TempDir()

	specPath := filepath.Join(dir, "federation.yaml")
	if err := os.WriteFile(specPath, []byte(testSpec), 0644); err != nil {
		t.Fatal(err)
	}
	planPath := filepath.Join(dir, "plan.json")

	rootCmd.SetArgs([]string{
		"compile",
		"-f", specPath,
		"-o", planPath,
		"--audit", filepath.Join(dir, "does-not-exist", "audit.log"),
	})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("Execute() expected error for unwritable audit path")
	}

	if _, err := os.Stat(planPath); !os.IsNotExist(err) {
		t.Errorf("plan file was written despite audit failure (stat err = %v)", err)
	}
}

func TestCompileWritesPlan(t *testing.T) {
	dir := t.TempDir()

	specPath := filepath.Join(dir, "federation.yaml")
	if err := os.WriteFile(specPath, []byte(testSpec), 0644); err != nil {
		t.Fatal(err)
	}
	planPath := filepath.Join(dir, "plan.json")
	auditPath := filepath.Join(dir, "audit.log")

	rootCmd.SetArgs([]string{
		"compile",
		"-f", specPath,
		"-o", planPath,
		"--audit", auditPath,
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if _, err := os.Stat(planPath); err != nil {
		t.Errorf("plan file missing: %v", err)
	}
	if _, err := os.Stat(auditPath); err != nil {
		t.Errorf("audit record missing: %v", err)
	}
}
