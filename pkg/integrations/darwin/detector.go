package darwin

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

const scriptTimeout = 2 * time.Second

// Detector implements window.Detector for macOS via osascript.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// IsAvailable checks if macOS detection is usable on this system.
func (d *Detector) IsAvailable() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("osascript")
	return err == nil
}

// DisplayServer returns "quartz"
func (d *Detector) DisplayServer() string {
	return "quartz"
}

// ActiveWindow returns the frontmost application reported by System Events.
func (d *Detector) ActiveWindow() (*window.Info, error) {
	out, err := runScript(`tell application "System Events" to get name of first process whose frontmost is true`)
	if err != nil {
		return nil, fmt.Errorf("failed to get frontmost process: %w", err)
	}
	if out == "" {
		return nil, fmt.Errorf("no frontmost process reported")
	}

	return &window.Info{
		AppName:       out,
		ProcessName:   out,
		DisplayServer: "quartz",
	}, nil
}

// ActivityInfo returns system idle time from IOKit's HIDIdleTime.
func (d *Detector) ActivityInfo() (*window.ActivityInfo, error) {
	info := &window.ActivityInfo{}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, "sh", "-c",
		`ioreg -c IOHIDSystem | awk '/HIDIdleTime/ {print $NF; exit}'`).Output()
	if err == nil {
		if idleNs, perr := strconv.ParseInt(strings.TrimSpace(string(output)), 10, 64); perr == nil {
			info.IdleSeconds = idleNs / 1_000_000_000
		}
	}

	return info, nil
}

// Close is a no-op; osascript holds no persistent resources.
func (d *Detector) Close() error {
	return nil
}

func runScript(script string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
