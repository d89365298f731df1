package window

// Info represents the currently focused application window
type Info struct {
	AppName       string
	WindowTitle   string
	ProcessName   string
	DisplayServer string // "x11", "wayland" or "quartz"
}

// ActivityInfo represents system idle/lock state
type ActivityInfo struct {
	IsLocked    bool
	IdleSeconds int64
}

// Detector is the interface that all active-window detection implementations must satisfy
type Detector interface {
	// ActiveWindow returns information about the currently focused window
	ActiveWindow() (*Info, error)

	// ActivityInfo returns information about system idle/lock state
	ActivityInfo() (*ActivityInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// DisplayServer returns the display server type
	DisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}
