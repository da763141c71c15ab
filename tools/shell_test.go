package tools

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestShellExecRunsCommand(t *testing.T) {
	shell := NewShellExec(t.TempDir(), 10000, nil, nil)

	out, err := shell.Invoke(context.Background(), map[string]any{"command": "echo hello"})
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestShellExecNonZeroExit(t *testing.T) {
	shell := NewShellExec(t.TempDir(), 10000, nil, nil)

	_, err := shell.Invoke(context.Background(), map[string]any{"command": "exit 3"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "exit code 3") {
		t.Errorf("exit code not reported: %v", err)
	}
}

func TestShellExecBlockedCommand(t *testing.T) {
	shell := NewShellExec(t.TempDir(), 10000, []string{"rm -rf /"}, nil)

	_, err := shell.Invoke(context.Background(), map[string]any{"command": "rm -rf / --no-preserve-root"})
	if err == nil || !strings.Contains(err.Error(), "blocked") {
		t.Errorf("expected blocked-command error, got %v", err)
	}
}

func TestShellExecMissingCommand(t *testing.T) {
	shell := NewShellExec(t.TempDir(), 10000, nil, nil)

	if _, err := shell.Invoke(context.Background(), map[string]any{}); err == nil {
		t.Error("expected error for missing command")
	}
}

func TestShellExecHonorsContext(t *testing.T) {
	shell := NewShellExec(t.TempDir(), 10000, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := shell.Invoke(ctx, map[string]any{"command": "sleep 5"})
	if err == nil {
		t.Fatal("expected an error from cancelled context")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("command outlived its context: %v", elapsed)
	}
}

func TestShellExecTruncatesOutput(t *testing.T) {
	shell := NewShellExec(t.TempDir(), 200, nil, nil)

	out, err := shell.Invoke(context.Background(), map[string]any{"command": "yes x | head -1000"})
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if len(out) > 500 {
		t.Errorf("output not truncated: %d chars", len(out))
	}
	if !strings.Contains(out, "characters omitted") {
		t.Error("expected truncation marker")
	}
}
