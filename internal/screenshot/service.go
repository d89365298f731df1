package screenshot

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/metrics"
	"github.com/shahmeerahmad1435/tracker-app/internal/session"
)

// DefaultInterval is how often a capture is taken while the service runs
const DefaultInterval = 10 * time.Second

// Uploader delivers captures to the backend. Satisfied by api.Client.
type Uploader interface {
	UploadScreenshot(ctx context.Context, screenshotBase64 string) error
}

// Service periodically captures the screen and uploads it base64-encoded.
// It only runs while the session is checked in with screenshots allowed;
// capture or upload failures are logged and never fatal.
type Service struct {
	capturer Capturer
	uploader Uploader
	sessions *session.Manager
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewService creates a screenshot service.
func NewService(capturer Capturer, uploader Uploader, sessions *session.Manager, interval time.Duration, logger zerolog.Logger) *Service {
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Service{
		capturer: capturer,
		uploader: uploader,
		sessions: sessions,
		interval: interval,
		logger:   logger.With().Str("component", "screenshot").Logger(),
	}
}

// Start begins periodic capture. Starting a running service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	stop, done := s.stopChan, s.doneChan
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.interval).Msg("Screenshot service started")

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.captureAndUpload()
			}
		}
	}()
}

// Stop halts periodic capture. Stopping a stopped service is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	done := s.doneChan
	s.mu.Unlock()

	<-done
	s.logger.Info().Msg("Screenshot service stopped")
}

// IsRunning reports whether the capture loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) captureAndUpload() {
	if s.sessions.State() != session.CheckedIn || !s.sessions.Settings().AllowScreenshot {
		return
	}

	png, err := s.capturer.Capture()
	if err != nil {
		metrics.ScreenshotUploads.WithLabelValues("capture_error").Inc()
		s.logger.Warn().Err(err).Msg("Screenshot capture failed")
		return
	}

	encoded := base64.StdEncoding.EncodeToString(png)
	if err := s.uploader.UploadScreenshot(context.Background(), encoded); err != nil {
		metrics.ScreenshotUploads.WithLabelValues("upload_error").Inc()
		s.logger.Warn().Err(err).Msg("Screenshot upload failed")
		return
	}

	metrics.ScreenshotUploads.WithLabelValues("ok").Inc()
	s.logger.Debug().Int("bytes", len(png)).Msg("Screenshot uploaded")
}
