package browser

import (
	"errors"
	"testing"
)

func TestNormalizeAppName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chrome.exe", "chrome"},
		{"Chrome.EXE", "Chrome"},
		{"  firefox  ", "firefox"},
		{"Google Chrome", "Google Chrome"},
		{"code", "code"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeAppName(tt.in); got != tt.want {
			t.Errorf("NormalizeAppName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsKnown(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Google Chrome", true},
		{"google chrome", true},
		{"chrome.exe", true},
		{"msedge", true},
		{"Safari", true},
		{"firefox", true},
		{"Brave Browser", true},
		{"code", false},
		{"slack", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsKnown(tt.name); got != tt.want {
			t.Errorf("IsKnown(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestUnsupportedResolver(t *testing.T) {
	r := &UnsupportedResolver{}
	url, err := r.ActiveTabURL("chrome")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if url != "" {
		t.Errorf("url = %q, want empty", url)
	}
}

func TestAppleScriptResolverUnknownBrowser(t *testing.T) {
	r := &AppleScriptResolver{}
	// Firefox has no script entry, so this must fail fast without exec
	if _, err := r.ActiveTabURL("firefox"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}
