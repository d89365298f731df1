package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/api"
	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/idle"
	"github.com/shahmeerahmad1435/tracker-app/internal/session"
	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
	"github.com/shahmeerahmad1435/tracker-app/pkg/browser"
	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

type stubDetector struct {
	idleSeconds int64
}

func (d *stubDetector) ActiveWindow() (*window.Info, error) {
	return &window.Info{AppName: "code"}, nil
}

func (d *stubDetector) ActivityInfo() (*window.ActivityInfo, error) {
	return &window.ActivityInfo{IdleSeconds: d.idleSeconds}, nil
}

func (d *stubDetector) IsAvailable() bool     { return true }
func (d *stubDetector) DisplayServer() string { return "x11" }
func (d *stubDetector) Close() error          { return nil }

type noopReporter struct{}

func (noopReporter) ReportUsage(ctx context.Context, entries []usage.Entry) error { return nil }

func newTestAgent(t *testing.T, handler http.Handler) (*Agent, *session.Manager, *usage.Tracker) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.API.BaseURL = server.URL

	det := &stubDetector{}
	client := api.NewClient(server.URL, 5*time.Second, zerolog.Nop())
	client.SetToken("tok")
	sessions := session.NewManager(zerolog.Nop())
	sessions.SetLoginData("tok", "Alice", session.Settings{})

	usageTracker := usage.NewTracker(det, browser.New(), noopReporter{}, nil, usage.Config{}, zerolog.Nop())
	idleTracker := idle.NewTracker(det, client, sessions, time.Second, zerolog.Nop())

	ag := New(cfg, client, sessions, usageTracker, idleTracker, nil, det, zerolog.Nop())
	t.Cleanup(usageTracker.Stop)

	return ag, sessions, usageTracker
}

func TestUsageFollowsStateAndPolicy(t *testing.T) {
	_, sessions, usageTracker := newTestAgent(t, http.NotFoundHandler())

	// Checked in without the policy: tracker stays off
	sessions.SetCheckIn("09:00", 0)
	if usageTracker.IsRunning() {
		t.Fatal("usage tracker running without usage policy")
	}

	// Policy arrives via settings sync: tracker starts
	sessions.UpdateSettings(func(s *session.Settings) { s.UsagePolicyEnabled = true })
	if !usageTracker.IsRunning() {
		t.Fatal("usage tracker not running while checked in with policy enabled")
	}

	// Break pauses tracking
	sessions.SetBreakStart("12:00", false)
	if usageTracker.IsRunning() {
		t.Fatal("usage tracker running during break")
	}

	sessions.SetBreakEnd()
	if !usageTracker.IsRunning() {
		t.Fatal("usage tracker not resumed after break")
	}

	// Policy revoked mid-session: tracker stops
	sessions.UpdateSettings(func(s *session.Settings) { s.UsagePolicyEnabled = false })
	if usageTracker.IsRunning() {
		t.Fatal("usage tracker running after policy revoked")
	}

	sessions.UpdateSettings(func(s *session.Settings) { s.UsagePolicyEnabled = true })
	sessions.SetCheckOut()
	if usageTracker.IsRunning() {
		t.Fatal("usage tracker running after check-out")
	}
}

func TestSyncDashboardMirrorsState(t *testing.T) {
	payload := `{
		"is_checked_in": true,
		"today_attendance": {"check_in": "09:05", "late_by": 300},
		"staff": {"name": "Alice", "usage_policy_enabled": "yes", "force_break_time": 10}
	}`
	ag, sessions, usageTracker := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))

	if err := ag.syncDashboard(context.Background()); err != nil {
		t.Fatalf("syncDashboard() error: %v", err)
	}

	if sessions.State() != session.CheckedIn {
		t.Errorf("state = %s, want checked_in", sessions.State())
	}
	if sessions.CheckInTime() != "09:05" {
		t.Errorf("CheckInTime() = %q, want 09:05", sessions.CheckInTime())
	}
	if !sessions.Settings().UsagePolicyEnabled {
		t.Error("UsagePolicyEnabled not merged from dashboard")
	}
	if got := sessions.Settings().ForceBreakAfter; got != 10*time.Minute {
		t.Errorf("ForceBreakAfter = %v, want 10m", got)
	}
	if !usageTracker.IsRunning() {
		t.Error("usage tracker not started after sync confirmed checked-in with policy")
	}

	// Backend reports check-out: session follows, tracker stops
	payload = `{"is_checked_in": true, "is_checked_out": true}`
	if err := ag.syncDashboard(context.Background()); err != nil {
		t.Fatalf("syncDashboard() error: %v", err)
	}
	if sessions.State() != session.LoggedOut {
		t.Errorf("state = %s after check-out, want logged_out", sessions.State())
	}
	if usageTracker.IsRunning() {
		t.Error("usage tracker running after check-out")
	}
}

func TestSyncDashboardBreakKeepsForceFlavor(t *testing.T) {
	ag, sessions, _ := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_checked_in": true, "on_break": true, "current_break": {"start": "15:00"}}`))
	}))

	sessions.SetCheckIn("09:00", 0)
	sessions.SetBreakStart("15:00", true)

	if err := ag.syncDashboard(context.Background()); err != nil {
		t.Fatalf("syncDashboard() error: %v", err)
	}
	if sessions.State() != session.ForceBreak {
		t.Errorf("state = %s, want force_break preserved across sync", sessions.State())
	}
}

func TestSessionSettingsConversion(t *testing.T) {
	settings := sessionSettings(api.StaffSettings{
		UsagePolicyEnabled: true,
		AllowScreenshot:    false,
		ForceBreakTime:     15,
		ShiftStart:         "09:00",
		ShiftEnd:           "17:00",
		Timezone:           "Asia/Karachi",
	}, api.CompanyRules{Idle1Time: 5, Idle2Time: 10, Idle3Time: 15})

	if !settings.UsagePolicyEnabled {
		t.Error("UsagePolicyEnabled = false, want true")
	}
	if settings.ForceBreakAfter != 15*time.Minute {
		t.Errorf("ForceBreakAfter = %v, want 15m", settings.ForceBreakAfter)
	}
	want := []time.Duration{5 * time.Minute, 10 * time.Minute, 15 * time.Minute}
	if len(settings.IdleThresholds) != len(want) {
		t.Fatalf("IdleThresholds = %v, want %v", settings.IdleThresholds, want)
	}
	for i := range want {
		if settings.IdleThresholds[i] != want[i] {
			t.Errorf("IdleThresholds[%d] = %v, want %v", i, settings.IdleThresholds[i], want[i])
		}
	}
}

func TestForceBreakDurationDefault(t *testing.T) {
	if got := forceBreakDuration(0); got != session.DefaultForceBreakAfter {
		t.Errorf("forceBreakDuration(0) = %v, want default %v", got, session.DefaultForceBreakAfter)
	}
	if got := forceBreakDuration(-3); got != session.DefaultForceBreakAfter {
		t.Errorf("forceBreakDuration(-3) = %v, want default", got)
	}
	if got := forceBreakDuration(20); got != 20*time.Minute {
		t.Errorf("forceBreakDuration(20) = %v, want 20m", got)
	}
}

func TestIdleThresholdsSkipsUnset(t *testing.T) {
	thresholds := idleThresholds(api.CompanyRules{Idle1Time: 5, Idle3Time: 15})
	want := []time.Duration{5 * time.Minute, 15 * time.Minute}
	if len(thresholds) != len(want) {
		t.Fatalf("idleThresholds = %v, want %v", thresholds, want)
	}

	if thresholds := idleThresholds(api.CompanyRules{}); thresholds != nil {
		t.Errorf("idleThresholds(zero) = %v, want nil", thresholds)
	}
}

func TestCheckForceBreakStartsAndEnds(t *testing.T) {
	var forceStarts, breakEnds atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/desktop/break/force-start":
			forceStarts.Add(1)
		case "/staff/break/end":
			breakEnds.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	})
	ag, sessions, _ := newTestAgent(t, handler)

	det := ag.detector.(*stubDetector)
	sessions.UpdateSettings(func(s *session.Settings) {
		s.ForceBreakAfter = 5 * time.Minute
	})
	sessions.SetCheckIn("09:00", 0)

	// Below the limit: nothing happens
	det.idleSeconds = 60
	ag.checkForceBreak(context.Background())
	if forceStarts.Load() != 0 {
		t.Fatalf("force break started at 60s idle")
	}

	// Past the limit: force break starts
	det.idleSeconds = 400
	ag.checkForceBreak(context.Background())
	if n := forceStarts.Load(); n != 1 {
		t.Fatalf("forceStarts = %d, want 1", n)
	}
	if sessions.State() != session.ForceBreak {
		t.Fatalf("state = %s, want force_break", sessions.State())
	}

	// Still idle: break continues
	ag.checkForceBreak(context.Background())
	if breakEnds.Load() != 0 {
		t.Fatalf("break ended while still idle")
	}

	// Activity resumes: break ends
	det.idleSeconds = 1
	ag.checkForceBreak(context.Background())
	if n := breakEnds.Load(); n != 1 {
		t.Fatalf("breakEnds = %d, want 1", n)
	}
	if sessions.State() != session.CheckedIn {
		t.Fatalf("state = %s after resume, want checked_in", sessions.State())
	}
}
