package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrUnsupported is returned when tab URL retrieval is not implemented for
// the current platform or browser.
var ErrUnsupported = errors.New("active tab URL not supported")

const scriptTimeout = 2 * time.Second

// New returns the tab resolver for the current platform.
func New() TabResolver {
	if runtime.GOOS == "darwin" {
		return &AppleScriptResolver{}
	}
	return &UnsupportedResolver{}
}

// UnsupportedResolver is used on platforms without tab URL support
// (Linux and Windows would need accessibility APIs). The sampler treats
// the URL as absent.
type UnsupportedResolver struct{}

func (r *UnsupportedResolver) ActiveTabURL(appName string) (string, error) {
	return "", ErrUnsupported
}

// AppleScriptResolver retrieves the active tab URL on macOS via osascript.
type AppleScriptResolver struct{}

// tabScripts maps normalized browser names to the AppleScript that returns
// the frontmost tab URL. Firefox has no usable AppleScript interface.
var tabScripts = map[string]string{
	"google chrome":  `tell application "Google Chrome" to get URL of active tab of front window`,
	"chromium":       `tell application "Google Chrome" to get URL of active tab of front window`,
	"microsoft edge": `tell application "Microsoft Edge" to get URL of active tab of front window`,
	"safari":         `tell application "Safari" to get URL of current tab of front window`,
	"brave browser":  `tell application "Brave Browser" to get URL of active tab of front window`,
}

func (r *AppleScriptResolver) ActiveTabURL(appName string) (string, error) {
	script, ok := tabScripts[strings.ToLower(NormalizeAppName(appName))]
	if !ok {
		return "", ErrUnsupported
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("failed to query %s tab: %w", appName, err)
	}

	url := strings.TrimSpace(string(output))
	if url == "" || url == "missing value" {
		return "", ErrUnsupported
	}
	return url, nil
}
