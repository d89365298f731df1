package usage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/metrics"
	"github.com/shahmeerahmad1435/tracker-app/pkg/browser"
	"github.com/shahmeerahmad1435/tracker-app/pkg/window"
)

const (
	// DefaultSampleInterval is how often the foreground application is sampled
	DefaultSampleInterval = 10 * time.Second

	// DefaultReportInterval is how often accumulated usage is flushed
	DefaultReportInterval = 60 * time.Second

	// DefaultFlushTimeout bounds a single report call, including the final
	// flush on stop
	DefaultFlushTimeout = 10 * time.Second
)

// Reporter delivers accumulated usage entries to the backend.
type Reporter interface {
	ReportUsage(ctx context.Context, entries []Entry) error
}

// Recorder receives a best-effort local copy of every flush attempt.
type Recorder interface {
	RecordFlush(entries []Entry, delivered bool)
}

// Config holds tracker configuration
type Config struct {
	SampleInterval time.Duration
	ReportInterval time.Duration
	FlushTimeout   time.Duration
}

// Tracker samples the foreground application on a fixed interval,
// accumulates durations per (app, site) and flushes them to the backend on
// an independent interval. Delivery is at-least-once: a failed flush merges
// its snapshot back into the bucket so the counts are resent next cycle.
type Tracker struct {
	detector window.Detector
	tabs     browser.TabResolver
	reporter Reporter
	recorder Recorder // may be nil
	logger   zerolog.Logger

	sampleInterval time.Duration
	reportInterval time.Duration
	flushTimeout   time.Duration
	sampleSeconds  int64

	mu       sync.Mutex
	bucket   Bucket
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewTracker creates a usage tracker. recorder may be nil.
func NewTracker(det window.Detector, tabs browser.TabResolver, reporter Reporter, recorder Recorder, cfg Config, logger zerolog.Logger) *Tracker {
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = DefaultSampleInterval
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = DefaultReportInterval
	}
	if cfg.FlushTimeout == 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}

	return &Tracker{
		detector:       det,
		tabs:           tabs,
		reporter:       reporter,
		recorder:       recorder,
		logger:         logger.With().Str("component", "usage-tracker").Logger(),
		sampleInterval: cfg.SampleInterval,
		reportInterval: cfg.ReportInterval,
		flushTimeout:   cfg.FlushTimeout,
		sampleSeconds:  int64(cfg.SampleInterval.Seconds()),
		bucket:         make(Bucket),
	}
}

// Start begins sampling and reporting. Starting a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.bucket = make(Bucket)
	t.stopChan = make(chan struct{})
	t.doneChan = make(chan struct{})
	stop, done := t.stopChan, t.doneChan
	t.mu.Unlock()

	t.logger.Info().
		Dur("sample_interval", t.sampleInterval).
		Dur("report_interval", t.reportInterval).
		Msg("Usage tracking started")

	go t.run(stop, done)
}

// Stop halts both timers, performs exactly one final best-effort flush with
// a bounded timeout, and discards the bucket. Stopping a stopped tracker is
// a no-op.
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

	// Final flush regardless of outcome; no retry loop survives session end
	if err := t.flush(context.Background()); err != nil {
		t.logger.Warn().Err(err).Msg("Final usage flush failed, dropping accumulated entries")
	}

	t.mu.Lock()
	t.bucket = make(Bucket)
	t.mu.Unlock()
	metrics.BucketEntries.Set(0)

	t.logger.Info().Msg("Usage tracking stopped")
}

// IsRunning reports whether the tracker loop is active.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Snapshot returns the current accumulated entries without clearing them.
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bucket.Entries()
}

// run drives both tickers on a single goroutine so sampling and reporting
// never interleave except through the bucket lock.
func (t *Tracker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	sampleTicker := time.NewTicker(t.sampleInterval)
	defer sampleTicker.Stop()
	reportTicker := time.NewTicker(t.reportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-sampleTicker.C:
			t.sample()
		case <-reportTicker.C:
			if err := t.flush(context.Background()); err != nil {
				t.logger.Warn().Err(err).Msg("Usage report failed, entries retained for next cycle")
			}
		}
	}
}

// sample attributes one full interval to whatever is frontmost right now.
// Collaborator failures degrade to "unknown"/absent and never stop sampling.
func (t *Tracker) sample() {
	info, err := t.detector.ActiveWindow()
	if err != nil {
		t.logger.Debug().Err(err).Msg("Active window unavailable, skipping sample")
		metrics.SampleErrors.Inc()
		return
	}

	appName := browser.NormalizeAppName(info.AppName)
	if appName == "" {
		return
	}

	siteURL := ""
	if browser.IsKnown(appName) {
		url, err := t.tabs.ActiveTabURL(appName)
		if err != nil {
			t.logger.Debug().Err(err).Str("app", appName).Msg("Active tab URL unavailable")
		} else {
			siteURL = url
		}
	}

	t.mu.Lock()
	t.bucket[Key{AppName: appName, SiteURL: siteURL}] += t.sampleSeconds
	size := len(t.bucket)
	t.mu.Unlock()

	metrics.SamplesTotal.Inc()
	metrics.BucketEntries.Set(float64(size))
}

// flush atomically swaps in a fresh bucket and reports the snapshot. On
// failure the snapshot is merged back so no entry is ever dropped; entries
// accumulated after the swap stay for the next cycle either way.
func (t *Tracker) flush(ctx context.Context) error {
	t.mu.Lock()
	if len(t.bucket) == 0 {
		t.mu.Unlock()
		metrics.FlushAttempts.WithLabelValues("empty").Inc()
		return nil
	}
	snapshot := t.bucket
	t.bucket = make(Bucket)
	t.mu.Unlock()

	entries := snapshot.Entries()
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.flushTimeout)
	defer cancel()

	if err := t.reporter.ReportUsage(ctx, entries); err != nil {
		t.mu.Lock()
		t.bucket.Merge(snapshot)
		size := len(t.bucket)
		t.mu.Unlock()
		metrics.BucketEntries.Set(float64(size))
		metrics.FlushAttempts.WithLabelValues("error").Inc()
		if t.recorder != nil {
			t.recorder.RecordFlush(entries, false)
		}
		return err
	}

	metrics.FlushAttempts.WithLabelValues("ok").Inc()
	if t.recorder != nil {
		t.recorder.RecordFlush(entries, true)
	}

	t.logger.Debug().Int("entries", len(entries)).Msg("Usage report delivered")
	return nil
}
