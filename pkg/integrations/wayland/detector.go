package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

// Detector implements window.Detector for Wayland sessions. Focused-window
// queries go through the GNOME Shell D-Bus interface; idle time comes from
// Mutter's IdleMonitor and lock state from the session screensaver.
type Detector struct {
	conn *dbus.Conn
}

// shellEvalScript asks GNOME Shell for the focused window as JSON.
const shellEvalScript = `
	let fw = global.get_window_actors()
		.map(a => a.meta_window)
		.find(w => w.has_focus());
	if (!fw) {
		fw = global.display.get_focus_window();
	}
	fw ? JSON.stringify({
		wm_class: fw.get_wm_class() || '',
		title: fw.get_title() || '',
		pid: fw.get_pid() || 0
	}) : 'null';
`

type focusedWindow struct {
	WMClass string `json:"wm_class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
}

// NewDetector connects to the session bus.
func NewDetector() (*Detector, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Detector{conn: conn}, nil
}

// IsAvailable checks if Wayland detection is usable on this system.
func (d *Detector) IsAvailable() bool {
	if d.conn == nil {
		return false
	}
	if os.Getenv("WAYLAND_DISPLAY") == "" && os.Getenv("XDG_SESSION_TYPE") != "wayland" {
		return false
	}
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	return strings.Contains(desktop, "gnome") || strings.Contains(desktop, "ubuntu")
}

// DisplayServer returns "wayland"
func (d *Detector) DisplayServer() string {
	return "wayland"
}

// ActiveWindow returns information about the currently focused window.
func (d *Detector) ActiveWindow() (*window.Info, error) {
	obj := d.conn.Object("org.gnome.Shell", "/org/gnome/Shell")

	var ok bool
	var result string
	if err := obj.Call("org.gnome.Shell.Eval", 0, shellEvalScript).Store(&ok, &result); err != nil {
		return nil, fmt.Errorf("shell eval failed: %w", err)
	}
	if !ok || result == "" || result == "null" {
		return nil, fmt.Errorf("no focused window reported by shell")
	}

	var fw focusedWindow
	if err := json.Unmarshal([]byte(result), &fw); err != nil {
		return nil, fmt.Errorf("failed to decode shell response: %w", err)
	}
	if fw.WMClass == "" && fw.Title == "" {
		return nil, fmt.Errorf("focused window has no usable application name")
	}

	appName := fw.WMClass
	if appName == "" {
		appName = fw.Title
	}

	return &window.Info{
		AppName:       appName,
		WindowTitle:   fw.Title,
		ProcessName:   fw.WMClass,
		DisplayServer: "wayland",
	}, nil
}

// ActivityInfo returns system idle/lock information.
func (d *Detector) ActivityInfo() (*window.ActivityInfo, error) {
	info := &window.ActivityInfo{}

	idle := d.conn.Object("org.gnome.Mutter.IdleMonitor", "/org/gnome/Mutter/IdleMonitor/Core")
	var idleMs uint64
	if err := idle.Call("org.gnome.Mutter.IdleMonitor.GetIdletime", 0).Store(&idleMs); err == nil {
		info.IdleSeconds = int64(idleMs / 1000)
	}

	saver := d.conn.Object("org.gnome.ScreenSaver", "/org/gnome/ScreenSaver")
	var active bool
	if err := saver.Call("org.gnome.ScreenSaver.GetActive", 0).Store(&active); err == nil {
		info.IsLocked = active
	}

	return info, nil
}

// Close releases the bus connection.
func (d *Detector) Close() error {
	if d.conn != nil {
		err := d.conn.Close()
		d.conn = nil
		return err
	}
	return nil
}
