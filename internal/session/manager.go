package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// StateObserver is notified after every state transition.
type StateObserver func(old, new State)

// SettingsObserver is notified after settings change.
type SettingsObserver func(Settings)

// Manager holds the current session explicitly (no ambient globals): state,
// token, identity and policy settings. Services receive it and subscribe to
// transitions; the manager never reaches into the services itself.
type Manager struct {
	logger zerolog.Logger

	mu          sync.RWMutex
	state       State
	token       string
	userName    string
	checkInTime string
	breakStart  string
	lateByMin   int
	settings    Settings
	stateObs    []StateObserver
	settingsObs []SettingsObserver
}

// NewManager creates a manager in the LoggedOut state.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Token returns the session token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// UserName returns the logged-in user's display name.
func (m *Manager) UserName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userName
}

// CheckInTime returns today's check-in time string, empty when not checked in.
func (m *Manager) CheckInTime() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkInTime
}

// OnStateChange registers an observer for state transitions.
func (m *Manager) OnStateChange(obs StateObserver) {
	m.mu.Lock()
	m.stateObs = append(m.stateObs, obs)
	m.mu.Unlock()
}

// OnSettingsChange registers an observer for settings changes.
func (m *Manager) OnSettingsChange(obs SettingsObserver) {
	m.mu.Lock()
	m.settingsObs = append(m.settingsObs, obs)
	m.mu.Unlock()
}

// SetLoginData installs session data after a successful login. The state
// stays LoggedOut until the dashboard sync or an explicit check-in confirms
// an active work session.
func (m *Manager) SetLoginData(token, userName string, settings Settings) {
	m.mu.Lock()
	m.token = token
	m.userName = userName
	m.settings = settings
	obs := append([]SettingsObserver(nil), m.settingsObs...)
	m.mu.Unlock()

	m.logger.Info().Str("user", userName).Msg("Session established")
	for _, o := range obs {
		o(settings)
	}
}

// UpdateSettings applies a mutation to the settings under the lock and
// notifies observers when anything changed.
func (m *Manager) UpdateSettings(mutate func(*Settings)) {
	m.mu.Lock()
	before := m.settings
	mutate(&m.settings)
	changed := !settingsEqual(before, m.settings)
	settings := m.settings
	obs := append([]SettingsObserver(nil), m.settingsObs...)
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Debug().
		Bool("usage_policy_enabled", settings.UsagePolicyEnabled).
		Bool("allow_screenshot", settings.AllowScreenshot).
		Msg("Session settings updated")
	for _, o := range obs {
		o(settings)
	}
}

// SetCheckIn transitions to CheckedIn.
func (m *Manager) SetCheckIn(checkInTime string, lateByMinutes int) {
	m.mu.Lock()
	m.checkInTime = checkInTime
	m.lateByMin = lateByMinutes
	m.mu.Unlock()
	m.transition(CheckedIn)
}

// SetBreakStart transitions to OnBreak, or ForceBreak for inactivity breaks.
func (m *Manager) SetBreakStart(breakStart string, force bool) {
	m.mu.Lock()
	m.breakStart = breakStart
	m.mu.Unlock()
	if force {
		m.transition(ForceBreak)
	} else {
		m.transition(OnBreak)
	}
}

// SetBreakEnd returns from a break to CheckedIn.
func (m *Manager) SetBreakEnd() {
	m.mu.Lock()
	m.breakStart = ""
	m.mu.Unlock()
	m.transition(CheckedIn)
}

// SetCheckOut clears attendance data and transitions to LoggedOut.
func (m *Manager) SetCheckOut() {
	m.mu.Lock()
	m.checkInTime = ""
	m.breakStart = ""
	m.lateByMin = 0
	m.mu.Unlock()
	m.transition(LoggedOut)
}

// Logout clears everything and transitions to LoggedOut.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.token = ""
	m.userName = ""
	m.checkInTime = ""
	m.breakStart = ""
	m.lateByMin = 0
	m.settings = Settings{}
	m.mu.Unlock()
	m.transition(LoggedOut)
}

func (m *Manager) transition(next State) {
	m.mu.Lock()
	if m.state == next {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.state = next
	obs := append([]StateObserver(nil), m.stateObs...)
	m.mu.Unlock()

	m.logger.Info().
		Stringer("from", prev).
		Stringer("to", next).
		Msg("Session state changed")
	for _, o := range obs {
		o(prev, next)
	}
}

func settingsEqual(a, b Settings) bool {
	if a.UsagePolicyEnabled != b.UsagePolicyEnabled ||
		a.AllowScreenshot != b.AllowScreenshot ||
		a.ForceBreakAfter != b.ForceBreakAfter ||
		a.ShiftStart != b.ShiftStart ||
		a.ShiftEnd != b.ShiftEnd ||
		a.Timezone != b.Timezone ||
		len(a.IdleThresholds) != len(b.IdleThresholds) {
		return false
	}
	for i := range a.IdleThresholds {
		if a.IdleThresholds[i] != b.IdleThresholds[i] {
			return false
		}
	}
	return true
}
