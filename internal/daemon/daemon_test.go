package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPIDFileRoundTrip(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "trackerd.pid")
	d := New(pidFile)

	// Missing file reads as no PID
	pid, err := d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error on missing file: %v", err)
	}
	if pid != 0 {
		t.Errorf("ReadPID() = %d for missing file, want 0", pid)
	}

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}

	pid, err = d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, want %d", pid, os.Getpid())
	}

	running, gotPID, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if !running || gotPID != os.Getpid() {
		t.Errorf("IsRunning() = %v/%d, want true/%d", running, gotPID, os.Getpid())
	}

	if err := d.RemovePID(); err != nil {
		t.Fatalf("RemovePID() error: %v", err)
	}
	// Removing twice is fine
	if err := d.RemovePID(); err != nil {
		t.Fatalf("second RemovePID() error: %v", err)
	}
}

func TestIsRunningClearsStalePID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "trackerd.pid")
	d := New(pidFile)

	// A PID that cannot exist on Linux
	if err := os.WriteFile(pidFile, []byte("4194305"), 0644); err != nil {
		t.Fatal(err)
	}

	running, _, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if running {
		t.Error("IsRunning() = true for stale PID")
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("stale PID file not removed")
	}
}

func TestReadPIDInvalidContents(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "trackerd.pid")
	if err := os.WriteFile(pidFile, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(pidFile).ReadPID(); err == nil {
		t.Fatal("ReadPID() returned nil error for invalid contents")
	}
}
