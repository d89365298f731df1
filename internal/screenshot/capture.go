package screenshot

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Capturer produces a full-screen PNG capture.
type Capturer interface {
	Capture() ([]byte, error)
}

// ExecCapturer shells out to the first available platform screenshot tool.
type ExecCapturer struct {
	tool string
}

// NewCapturer probes for a usable screenshot tool.
func NewCapturer() (*ExecCapturer, error) {
	var candidates []string
	if runtime.GOOS == "darwin" {
		candidates = []string{"screencapture"}
	} else {
		candidates = []string{"grim", "gnome-screenshot", "import"}
	}

	for _, tool := range candidates {
		if _, err := exec.LookPath(tool); err == nil {
			return &ExecCapturer{tool: tool}, nil
		}
	}
	return nil, fmt.Errorf("no screenshot tool available (tried %v)", candidates)
}

// Tool returns the selected screenshot tool name.
func (c *ExecCapturer) Tool() string {
	return c.tool
}

// Capture grabs the full screen as PNG bytes.
func (c *ExecCapturer) Capture() ([]byte, error) {
	switch c.tool {
	case "grim":
		return exec.Command("grim", "-t", "png", "-").Output()
	case "import":
		return exec.Command("import", "-window", "root", "png:-").Output()
	}

	// Tools without stdout support write to a temp file
	path := filepath.Join(os.TempDir(), fmt.Sprintf("trackerd-shot-%d.png", os.Getpid()))
	defer os.Remove(path)

	var cmd *exec.Cmd
	switch c.tool {
	case "screencapture":
		cmd = exec.Command("screencapture", "-x", "-t", "png", path)
	case "gnome-screenshot":
		cmd = exec.Command("gnome-screenshot", "-f", path)
	default:
		return nil, fmt.Errorf("unknown screenshot tool %q", c.tool)
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w", c.tool, err)
	}
	return os.ReadFile(path)
}
