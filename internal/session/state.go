package session

import "time"

// State is the agent's attendance state.
type State int

const (
	LoggedOut State = iota
	CheckedIn
	OnBreak
	ForceBreak
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case CheckedIn:
		return "checked_in"
	case OnBreak:
		return "on_break"
	case ForceBreak:
		return "force_break"
	}
	return "unknown"
}

// Settings holds the per-session policy flags and rules that gate the
// background services. Zero value means everything disabled.
type Settings struct {
	UsagePolicyEnabled bool
	AllowScreenshot    bool
	ForceBreakAfter    time.Duration
	ShiftStart         string
	ShiftEnd           string
	Timezone           string

	// IdleThresholds are the company idle reporting levels in ascending
	// order (idle1, idle2, idle3). Empty disables idle reporting.
	IdleThresholds []time.Duration
}

// DefaultForceBreakAfter applies when the backend sends no force break time.
const DefaultForceBreakAfter = 5 * time.Minute
