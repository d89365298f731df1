package idle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/metrics"
	"github.com/shahmeerahmad1435/tracker-app/internal/session"
	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

// DefaultCheckInterval is how often idle time is inspected
const DefaultCheckInterval = 5 * time.Second

// ActivitySource provides the current idle/lock state. Satisfied by
// window.Detector.
type ActivitySource interface {
	ActivityInfo() (*window.ActivityInfo, error)
}

// Reporter delivers idle reports to the backend. Satisfied by api.Client.
type Reporter interface {
	ReportIdle(ctx context.Context, idleSeconds int64) error
}

// Tracker reports idle time to the backend only when it crosses the
// configured company thresholds (idle1, idle2, idle3) in order. Dropping
// back below the first threshold re-arms all of them.
type Tracker struct {
	source   ActivitySource
	reporter Reporter
	sessions *session.Manager
	interval time.Duration
	logger   zerolog.Logger

	mu           sync.Mutex
	running      bool
	stopChan     chan struct{}
	doneChan     chan struct{}
	lastReported int // threshold index, -1 = none
}

// NewTracker creates an idle tracker.
func NewTracker(source ActivitySource, reporter Reporter, sessions *session.Manager, interval time.Duration, logger zerolog.Logger) *Tracker {
	if interval == 0 {
		interval = DefaultCheckInterval
	}
	return &Tracker{
		source:       source,
		reporter:     reporter,
		sessions:     sessions,
		interval:     interval,
		logger:       logger.With().Str("component", "idle-tracker").Logger(),
		lastReported: -1,
	}
}

// Start begins idle checking. Starting a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.lastReported = -1
	t.stopChan = make(chan struct{})
	t.doneChan = make(chan struct{})
	stop, done := t.stopChan, t.doneChan
	t.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.check()
			}
		}
	}()
}

// Stop halts idle checking. Stopping a stopped tracker is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopChan)
	done := t.doneChan
	t.mu.Unlock()

	<-done
}

// IsRunning reports whether the check loop is active.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// check inspects idle time once and reports the next uncrossed threshold.
func (t *Tracker) check() {
	if t.sessions.State() != session.CheckedIn {
		return
	}

	thresholds := t.sessions.Settings().IdleThresholds
	if len(thresholds) == 0 {
		return
	}

	info, err := t.source.ActivityInfo()
	if err != nil {
		t.logger.Debug().Err(err).Msg("Idle state unavailable")
		return
	}
	idleSeconds := info.IdleSeconds

	t.mu.Lock()
	defer t.mu.Unlock()

	// Active again below the first threshold: re-arm reporting
	if time.Duration(idleSeconds)*time.Second < thresholds[0] {
		t.lastReported = -1
		return
	}

	for i, threshold := range thresholds {
		if time.Duration(idleSeconds)*time.Second >= threshold && t.lastReported < i {
			if err := t.reporter.ReportIdle(context.Background(), idleSeconds); err != nil {
				t.logger.Warn().Err(err).Int64("idle_seconds", idleSeconds).Msg("Failed to report idle time")
				return
			}
			t.lastReported = i
			metrics.IdleReports.Inc()
			t.logger.Info().
				Int64("idle_seconds", idleSeconds).
				Int("threshold", i+1).
				Msg("Idle threshold reported")
			return
		}
	}
}
