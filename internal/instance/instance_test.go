package instance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// socketPath keeps paths short; unix socket paths are limited to ~100 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ws")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestSecondInstanceSignalsFirst(t *testing.T) {
	path := socketPath(t)
	first, err := Acquire(path, CmdShow)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	got := make(chan string, 1)
	first.Serve(func(cmd string) { got <- cmd })

	if _, err := Acquire(path, CmdShow); !errors.Is(err, ErrRunning) {
		t.Fatalf("second Acquire = %v, want ErrRunning", err)
	}
	select {
	case cmd := <-got:
		if cmd != CmdShow {
			t.Errorf("cmd = %q, want %q", cmd, CmdShow)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first instance never received the command")
	}
}

func TestAcquireReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	l, err := Acquire(path, CmdShow)
	if err != nil {
		t.Fatalf("Acquire over stale file: %v", err)
	}
	l.Close()
}

func TestCloseRemovesSocket(t *testing.T) {
	path := socketPath(t)
	l, err := Acquire(path, CmdShow)
	if err != nil {
		t.Fatal(err)
	}
	l.Serve(func(string) {})
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket still present: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// The slot is free again.
	l2, err := Acquire(path, CmdShow)
	if err != nil {
		t.Fatal(err)
	}
	l2.Close()
}
