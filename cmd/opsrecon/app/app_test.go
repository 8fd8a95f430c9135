package app

import (
	"bytes"
	"context"
	"testing"
)

// TestNew verifies app construction with defaults.
func TestNew(t *testing.T) {
	application, err := New("test", "abc123", "2026-01-01")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if application.Version() != "test" {
		t.Errorf("Version() = %s, want test", application.Version())
	}
	if application.Config() == nil {
		t.Error("Config() returned nil")
	}
	if application.Logger() == nil {
		t.Error("Logger() returned nil")
	}
}

// TestAppEngine verifies lazy engine construction returns a singleton.
func TestAppEngine(t *testing.T) {
	application, err := New("test", "abc123", "2026-01-01")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	first, err := application.Engine()
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	second, err := application.Engine()
	if err != nil {
		t.Fatalf("Engine() failed on second call: %v", err)
	}
	if first != second {
		t.Error("Engine() should return the same instance")
	}
}

// TestExecuteVersion verifies command wiring end to end.
func TestExecuteVersion(t *testing.T) {
	application, err := New("1.2.3", "abc123", "2026-01-01")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	rootCmd := application.createRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version"})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if got := out.String(); got != "opsrecon 1.2.3\n" {
		t.Errorf("version output = %q", got)
	}
}

// TestExecuteUnknownCommand verifies errors surface instead of exiting.
func TestExecuteUnknownCommand(t *testing.T) {
	application, err := New("test", "abc123", "2026-01-01")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := application.Execute(context.Background(), []string{"bogus"}); err == nil {
		t.Error("unknown command should return an error")
	}
}

// TestReconcileCommandMissingArgs verifies argument validation.
func TestReconcileCommandMissingArgs(t *testing.T) {
	application, err := New("test", "abc123", "2026-01-01")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := application.Execute(context.Background(), []string{"reconcile", "one.csv"}); err == nil {
		t.Error("reconcile requires exactly two batch files")
	}
}
