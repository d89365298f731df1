package detector

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shahmeerahmad1435/tracker-app/pkg/integrations/darwin"
	"github.com/shahmeerahmad1435/tracker-app/pkg/integrations/wayland"
	"github.com/shahmeerahmad1435/tracker-app/pkg/integrations/x11"
	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

// New selects the active-window detector for the current platform at
// startup. The rest of the agent only sees the window.Detector interface.
func New() (window.Detector, error) {
	if runtime.GOOS == "darwin" {
		d := darwin.NewDetector()
		if !d.IsAvailable() {
			return nil, fmt.Errorf("osascript not available")
		}
		return d, nil
	}

	switch DetectDisplayServer() {
	case "wayland":
		d, err := wayland.NewDetector()
		if err != nil {
			return nil, err
		}
		if !d.IsAvailable() {
			d.Close()
			return nil, fmt.Errorf("wayland session without a supported compositor")
		}
		return d, nil

	case "x11":
		d, err := x11.NewDetector()
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	return nil, fmt.Errorf("no display server detected")
}

// DetectDisplayServer inspects session environment variables.
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
