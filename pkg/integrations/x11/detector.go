package x11

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

// Detector implements window.Detector for X11 using the X protocol directly.
type Detector struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom

	hasXprintidle bool
}

var internedAtoms = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// NewDetector connects to the X server and interns the atoms we need.
func NewDetector() (*Detector, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	d := &Detector{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom),
	}

	for _, name := range internedAtoms {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		d.atoms[name] = reply.Atom
	}

	_, err = exec.LookPath("xprintidle")
	d.hasXprintidle = err == nil

	return d, nil
}

// IsAvailable checks if X11 detection is usable on this system.
func (d *Detector) IsAvailable() bool {
	return d.conn != nil && os.Getenv("DISPLAY") != ""
}

// DisplayServer returns "x11"
func (d *Detector) DisplayServer() string {
	return "x11"
}

// ActiveWindow returns information about the currently focused window.
func (d *Detector) ActiveWindow() (*window.Info, error) {
	win, err := d.activeWindow()
	if err != nil {
		return nil, err
	}

	instance, class := d.windowClass(win)
	appName := class
	if appName == "" {
		appName = instance
	}

	processName := ""
	if pid := d.windowPID(win); pid != 0 {
		processName = processNameFromPID(pid)
		if appName == "" {
			appName = processName
		}
	}

	if appName == "" {
		return nil, fmt.Errorf("active window has no usable application name")
	}

	return &window.Info{
		AppName:       appName,
		WindowTitle:   d.windowName(win),
		ProcessName:   processName,
		DisplayServer: "x11",
	}, nil
}

// ActivityInfo returns system idle/lock information.
func (d *Detector) ActivityInfo() (*window.ActivityInfo, error) {
	return &window.ActivityInfo{
		IsLocked:    screenLocked(),
		IdleSeconds: d.idleSeconds(),
	}, nil
}

// Close releases the X connection.
func (d *Detector) Close() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}

func (d *Detector) getProperty(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(d.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (d *Detector) activeWindow() (xproto.Window, error) {
	data, err := d.getProperty(d.root, d.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err == nil && len(data) >= 4 {
		if win := xproto.Window(binary.LittleEndian.Uint32(data)); win != 0 {
			return win, nil
		}
	}

	// Fall back to the input focus, walking up to the top-level parent
	reply, err := xproto.GetInputFocus(d.conn).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get input focus: %w", err)
	}
	if reply.Focus == 0 || reply.Focus == d.root {
		return 0, fmt.Errorf("no active window found")
	}
	return d.topLevelParent(reply.Focus), nil
}

func (d *Detector) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(d.conn, win).Reply()
		if err != nil || reply.Parent == d.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (d *Detector) windowName(win xproto.Window) string {
	data, err := d.getProperty(win, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = d.getProperty(win, d.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (d *Detector) windowClass(win xproto.Window) (instance, class string) {
	data, err := d.getProperty(win, d.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}

	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func (d *Detector) windowPID(win xproto.Window) uint32 {
	data, err := d.getProperty(win, d.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

// idleSeconds returns the X idle time via xprintidle, 0 when unavailable.
func (d *Detector) idleSeconds() int64 {
	if !d.hasXprintidle {
		return 0
	}

	output, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0
	}

	idleMs, err := strconv.ParseInt(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0
	}
	return idleMs / 1000
}

func processNameFromPID(pid uint32) string {
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}

// screenLocked checks for a running screen locker process.
func screenLocked() bool {
	lockers := []string{
		"gnome-screensaver-dialog",
		"kscreenlocker",
		"i3lock",
		"slock",
		"xscreensaver",
		"xsecurelock",
	}

	for _, locker := range lockers {
		if err := exec.Command("pgrep", "-x", locker).Run(); err == nil {
			return true
		}
	}

	return false
}
