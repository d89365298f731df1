package browser

import "strings"

// knownBrowsers are the application names we attempt tab URL retrieval for.
// Matching is case-insensitive and tolerant of a trailing executable suffix.
var knownBrowsers = map[string]struct{}{
	"google chrome":  {},
	"chromium":       {},
	"microsoft edge": {},
	"safari":         {},
	"firefox":        {},
	"brave browser":  {},
	"chrome":         {},
	"msedge":         {},
	"brave":          {},
}

// TabResolver is the interface for retrieving the active tab URL of a
// browser application. Platforms or browsers without support return
// ("", ErrUnsupported).
type TabResolver interface {
	// ActiveTabURL returns the URL of the frontmost tab of the given
	// browser application.
	ActiveTabURL(appName string) (string, error)
}

// NormalizeAppName strips a trailing executable suffix from an application
// name as reported by the platform (e.g. "chrome.exe" -> "chrome").
func NormalizeAppName(name string) string {
	name = strings.TrimSpace(name)
	if lower := strings.ToLower(name); strings.HasSuffix(lower, ".exe") {
		name = name[:len(name)-4]
	}
	return name
}

// IsKnown reports whether the application name is one of the fixed browser
// identifiers we try to resolve tab URLs for.
func IsKnown(appName string) bool {
	_, ok := knownBrowsers[strings.ToLower(NormalizeAppName(appName))]
	return ok
}
