package agent

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/api"
	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/idle"
	"github.com/shahmeerahmad1435/tracker-app/internal/screenshot"
	"github.com/shahmeerahmad1435/tracker-app/internal/session"
	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

// resumeIdleThreshold is how recent activity must be for a force break to
// be considered over.
const resumeIdleThreshold = 5 * time.Second

// Agent ties the background services to the session state. It polls the
// dashboard stats endpoint, mirrors the backend's attendance state into the
// session manager, and starts or stops the usage tracker as the state and
// the usage policy flag dictate.
type Agent struct {
	cfg         *config.Config
	client      *api.Client
	sessions    *session.Manager
	usage       *usage.Tracker
	idle        *idle.Tracker
	screenshots *screenshot.Service // nil when no capture tool is available
	detector    window.Detector
	logger      zerolog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

func New(cfg *config.Config, client *api.Client, sessions *session.Manager, usageTracker *usage.Tracker, idleTracker *idle.Tracker, screenshots *screenshot.Service, detector window.Detector, logger zerolog.Logger) *Agent {
	a := &Agent{
		cfg:         cfg,
		client:      client,
		sessions:    sessions,
		usage:       usageTracker,
		idle:        idleTracker,
		screenshots: screenshots,
		detector:    detector,
		logger:      logger.With().Str("component", "agent").Logger(),
	}

	sessions.OnStateChange(func(_, _ session.State) { a.reconcileUsage() })
	sessions.OnSettingsChange(func(session.Settings) { a.reconcileUsage() })

	return a
}

// Login authenticates against the backend and installs the returned
// session data. The attendance state itself comes from the first dashboard
// sync, not from login.
func (a *Agent) Login(ctx context.Context, email, password string) error {
	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		return errors.Wrap(err, "login failed")
	}

	a.sessions.SetLoginData(resp.SessionToken, resp.Name, sessionSettings(resp.StaffSettings, resp.CompanyRules))
	return nil
}

// Start launches the sync loop and the always-on services. The usage
// tracker is not started here; it follows the session state.
func (a *Agent) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.stopChan = make(chan struct{})
	a.doneChan = make(chan struct{})
	stop, done := a.stopChan, a.doneChan
	a.mu.Unlock()

	a.idle.Start()
	if a.screenshots != nil {
		a.screenshots.Start()
	}

	a.logger.Info().Dur("sync_interval", a.cfg.Sync.Interval).Msg("Agent started")
	go a.run(stop, done)
}

// Stop halts the sync loop and all services. The usage tracker performs
// its final flush inside its own Stop.
func (a *Agent) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopChan)
	done := a.doneChan
	a.mu.Unlock()

	<-done

	a.usage.Stop()
	a.idle.Stop()
	if a.screenshots != nil {
		a.screenshots.Stop()
	}

	a.logger.Info().Msg("Agent stopped")
}

func (a *Agent) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.cfg.Sync.Interval)
	defer ticker.Stop()

	// First sync immediately so a restart picks up an active session
	a.tick()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *Agent) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.RequestTimeout)
	defer cancel()

	if err := a.syncDashboard(ctx); err != nil {
		a.logger.Debug().Err(err).Msg("Dashboard sync failed")
	}
	a.checkForceBreak(ctx)
}

// syncDashboard mirrors the backend's view of the attendance state into
// the session manager and merges any settings the dashboard carries.
func (a *Agent) syncDashboard(ctx context.Context) error {
	if a.sessions.Token() == "" {
		return nil
	}

	stats, err := a.client.DashboardStats(ctx)
	if err != nil {
		return err
	}

	if stats.Staff != nil {
		a.mergeStaffSettings(stats.Staff)
	}

	current := a.sessions.State()
	switch {
	case stats.IsCheckedOut:
		if current != session.LoggedOut {
			a.sessions.SetCheckOut()
		}
	case stats.OnBreak:
		// A locally triggered force break also shows as OnBreak on the
		// backend; keep the force flavor until activity resumes.
		if current != session.OnBreak && current != session.ForceBreak {
			start := ""
			if stats.CurrentBreak != nil {
				start = stats.CurrentBreak.Start
			}
			a.sessions.SetBreakStart(start, false)
		}
	case stats.IsCheckedIn:
		if current != session.CheckedIn {
			checkIn, lateBy := "", 0
			if stats.TodayAttendance != nil {
				checkIn = stats.TodayAttendance.CheckIn
				lateBy = int(stats.TodayAttendance.LateBy / 60)
			}
			a.sessions.SetCheckIn(checkIn, lateBy)
		}
	default:
		if current != session.LoggedOut {
			a.sessions.SetCheckOut()
		}
	}

	return nil
}

// mergeStaffSettings folds the dashboard staff block into the session
// settings. Absent fields (nil pointers) leave the current value alone.
func (a *Agent) mergeStaffSettings(staff *api.DashboardStaff) {
	a.sessions.UpdateSettings(func(s *session.Settings) {
		if staff.UsagePolicyEnabled != nil {
			s.UsagePolicyEnabled = bool(*staff.UsagePolicyEnabled)
		}
		if staff.AllowScreenshot != nil {
			s.AllowScreenshot = bool(*staff.AllowScreenshot)
		}
		if staff.ForceBreakTime != nil {
			s.ForceBreakAfter = forceBreakDuration(*staff.ForceBreakTime)
		}
		if staff.Timezone != "" {
			s.Timezone = staff.Timezone
		}
		if staff.ShiftStart != "" {
			s.ShiftStart = staff.ShiftStart
		}
		if staff.ShiftEnd != "" {
			s.ShiftEnd = staff.ShiftEnd
		}
	})
}

// checkForceBreak starts a force break when the user has been idle past
// the configured limit, and ends it once activity resumes.
func (a *Agent) checkForceBreak(ctx context.Context) {
	settings := a.sessions.Settings()
	state := a.sessions.State()

	activity, err := a.detector.ActivityInfo()
	if err != nil {
		return
	}
	idleFor := time.Duration(activity.IdleSeconds) * time.Second

	switch state {
	case session.CheckedIn:
		if settings.ForceBreakAfter > 0 && idleFor >= settings.ForceBreakAfter {
			if err := a.client.ForceBreakStart(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("Force break start failed")
				return
			}
			a.sessions.SetBreakStart(time.Now().Format(time.RFC3339), true)
		}
	case session.ForceBreak:
		if idleFor < resumeIdleThreshold {
			if err := a.client.EndBreak(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("Force break end failed")
				return
			}
			a.sessions.SetBreakEnd()
		}
	}
}

// reconcileUsage starts or stops the usage tracker to match the current
// state and policy. Both operations are idempotent, so racing observers
// converge on the right outcome.
func (a *Agent) reconcileUsage() {
	shouldRun := a.sessions.State() == session.CheckedIn && a.sessions.Settings().UsagePolicyEnabled
	if shouldRun {
		a.usage.Start()
	} else {
		a.usage.Stop()
	}
}

// sessionSettings converts the login payload into session settings.
func sessionSettings(staff api.StaffSettings, rules api.CompanyRules) session.Settings {
	return session.Settings{
		UsagePolicyEnabled: bool(staff.UsagePolicyEnabled),
		AllowScreenshot:    bool(staff.AllowScreenshot),
		ForceBreakAfter:    forceBreakDuration(staff.ForceBreakTime),
		ShiftStart:         staff.ShiftStart,
		ShiftEnd:           staff.ShiftEnd,
		Timezone:           staff.Timezone,
		IdleThresholds:     idleThresholds(rules),
	}
}

func forceBreakDuration(minutes int) time.Duration {
	if minutes <= 0 {
		return session.DefaultForceBreakAfter
	}
	return time.Duration(minutes) * time.Minute
}

// idleThresholds returns the ascending idle levels, skipping unset ones.
func idleThresholds(rules api.CompanyRules) []time.Duration {
	var thresholds []time.Duration
	for _, minutes := range []int{rules.Idle1Time, rules.Idle2Time, rules.Idle3Time} {
		if minutes > 0 {
			thresholds = append(thresholds, time.Duration(minutes)*time.Minute)
		}
	}
	return thresholds
}
