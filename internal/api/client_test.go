package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, zerolog.Nop())
}

func TestLoginStoresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s, want /auth/login", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["email"] != "a@b.test" || body["password"] != "secret" {
			t.Errorf("credentials = %v", body)
		}

		json.NewEncoder(w).Encode(LoginResponse{
			SessionToken: "tok-123",
			Name:         "Alice",
			StaffSettings: StaffSettings{
				UsagePolicyEnabled: true,
				ForceBreakTime:     10,
			},
			CompanyRules: CompanyRules{Idle1Time: 5, Idle2Time: 10, Idle3Time: 15},
		})
	})

	resp, err := client.Login(context.Background(), "a@b.test", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Name != "Alice" {
		t.Errorf("Name = %s, want Alice", resp.Name)
	}
	if !bool(resp.StaffSettings.UsagePolicyEnabled) {
		t.Error("UsagePolicyEnabled = false, want true")
	}
	if client.Token() != "tok-123" {
		t.Errorf("Token() = %s, want tok-123", client.Token())
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"name": "Alice"})
	})

	if _, err := client.Login(context.Background(), "a@b.test", "secret"); err == nil {
		t.Fatal("Login() returned nil error for response without token")
	}
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})
	client.SetToken("tok-456")

	if err := client.CheckIn(context.Background()); err != nil {
		t.Fatalf("CheckIn() error: %v", err)
	}
	if gotAuth != "Bearer tok-456" {
		t.Errorf("Authorization = %q, want Bearer tok-456", gotAuth)
	}
}

func TestCheckInRequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be reached without a token")
	})

	if err := client.CheckIn(context.Background()); err == nil {
		t.Fatal("CheckIn() returned nil error without token")
	}
}

func TestReportUsagePayload(t *testing.T) {
	var got struct {
		Entries []usage.Entry `json:"entries"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/desktop/usage/report" {
			t.Errorf("path = %s, want /desktop/usage/report", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	client.SetToken("tok")

	entries := []usage.Entry{
		{AppName: "code", DurationSeconds: 30},
		{AppName: "chrome", DurationSeconds: 20, SiteURL: "https://github.com"},
	}
	if err := client.ReportUsage(context.Background(), entries); err != nil {
		t.Fatalf("ReportUsage() error: %v", err)
	}

	if len(got.Entries) != 2 {
		t.Fatalf("sent %d entries, want 2", len(got.Entries))
	}
	if got.Entries[0].AppName != "code" || got.Entries[0].DurationSeconds != 30 {
		t.Errorf("entry 0 = %+v", got.Entries[0])
	}
	if got.Entries[1].SiteURL != "https://github.com" {
		t.Errorf("entry 1 site = %s, want https://github.com", got.Entries[1].SiteURL)
	}
}

func TestReportIdlePayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/desktop/idle/report" {
			t.Errorf("path = %s, want /desktop/idle/report", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})
	client.SetToken("tok")

	if err := client.ReportIdle(context.Background(), 300); err != nil {
		t.Fatalf("ReportIdle() error: %v", err)
	}
	if got["idle_seconds"] != float64(300) {
		t.Errorf("idle_seconds = %v, want 300", got["idle_seconds"])
	}
	if _, err := time.Parse(time.RFC3339, got["timestamp"].(string)); err != nil {
		t.Errorf("timestamp %v is not RFC3339: %v", got["timestamp"], err)
	}
}

func TestErrorExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 401, `{"detail": "invalid credentials"}`, "invalid credentials"},
		{"message field", 400, `{"message": "bad request"}`, "bad request"},
		{"error field", 500, `{"error": "boom"}`, "boom"},
		{"validation list", 422, `{"detail": [{"loc": ["body", "email"], "msg": "field required"}]}`, "field required"},
		{"garbage body", 502, `<html>bad gateway</html>`, "request failed with status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			client.SetToken("tok")

			err := client.CheckIn(context.Background())
			if err == nil {
				t.Fatal("CheckIn() returned nil error")
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
		})
	}
}

func TestLogoutClearsTokenOnFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client.SetToken("tok")

	if err := client.Logout(context.Background()); err == nil {
		t.Fatal("Logout() returned nil error for 500 response")
	}
	if client.Token() != "" {
		t.Errorf("Token() = %q after logout, want empty", client.Token())
	}
}

func TestFlexBoolUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"yes"`, true},
		{`"no"`, false},
		{`"true"`, true},
		{`1`, true},
		{`0`, false},
		{`null`, false},
	}

	for _, tt := range tests {
		var b FlexBool
		if err := json.Unmarshal([]byte(tt.in), &b); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.in, err)
			continue
		}
		if bool(b) != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, bool(b), tt.want)
		}
	}
}

func TestDashboardStatsAbsentFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"is_checked_in": true,
			"staff": {"name": "Alice", "usage_policy_enabled": "yes"}
		}`))
	})
	client.SetToken("tok")

	stats, err := client.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats() error: %v", err)
	}
	if !stats.IsCheckedIn {
		t.Error("IsCheckedIn = false, want true")
	}
	if stats.Staff == nil {
		t.Fatal("Staff = nil")
	}
	if stats.Staff.UsagePolicyEnabled == nil || !bool(*stats.Staff.UsagePolicyEnabled) {
		t.Error("UsagePolicyEnabled not parsed from \"yes\"")
	}
	if stats.Staff.AllowScreenshot != nil {
		t.Error("AllowScreenshot should be nil when absent")
	}
}
