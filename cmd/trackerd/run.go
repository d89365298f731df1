package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shahmeerahmad1435/tracker-app/internal/agent"
	"github.com/shahmeerahmad1435/tracker-app/internal/api"
	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/daemon"
	"github.com/shahmeerahmad1435/tracker-app/internal/database"
	"github.com/shahmeerahmad1435/tracker-app/internal/idle"
	"github.com/shahmeerahmad1435/tracker-app/internal/reporter"
	"github.com/shahmeerahmad1435/tracker-app/internal/screenshot"
	"github.com/shahmeerahmad1435/tracker-app/internal/session"
	"github.com/shahmeerahmad1435/tracker-app/internal/status"
	"github.com/shahmeerahmad1435/tracker-app/internal/systemd"
	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
	"github.com/shahmeerahmad1435/tracker-app/pkg/browser"
	"github.com/shahmeerahmad1435/tracker-app/pkg/detector"
)

var (
	loginEmail    string
	loginPassword string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent in the foreground",
	Long: `Run the agent in the foreground. The agent logs in with the given
credentials, keeps the session in sync with the backend and drives the
background services until it receives SIGINT or SIGTERM.`,
	RunE: runAgent,
}

func init() {
	runCmd.Flags().StringVar(&loginEmail, "email", "", "Backend login email (defaults to TRACKERD_EMAIL)")
	runCmd.Flags().StringVar(&loginPassword, "password", "", "Backend login password (defaults to TRACKERD_PASSWORD)")
	rootCmd.AddCommand(runCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("api", cfg.API.BaseURL).
		Msg("Starting trackerd")

	// Refuse to start twice
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check agent status: %w", err)
	}
	if running {
		return fmt.Errorf("agent is already running (PID: %d)", pid)
	}
	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer dm.RemovePID()

	// Local history store
	dbPath := cfg.History.Path
	if dbPath == "" {
		dbPath, err = database.GetDefaultDBPath()
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
	}
	db, err := database.Connect(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}()
	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := database.NewRepository(db)

	logger.Info().Str("path", dbPath).Msg("History database initialized")

	if cfg.History.Retention > 0 {
		removed, err := repo.DeleteOldRecords(time.Now().Add(-cfg.History.Retention))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to prune old history records")
		} else if removed > 0 {
			logger.Info().Int64("records", removed).Msg("Pruned history records past retention")
		}
	}

	// Platform collaborators
	det, err := detector.New()
	if err != nil {
		return fmt.Errorf("failed to initialize window detector: %w", err)
	}
	defer det.Close()

	logger.Info().Str("display_server", det.DisplayServer()).Msg("Window detector initialized")

	tabs := browser.New()

	// Backend client and session
	client := api.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, logger)
	sessions := session.NewManager(logger)

	// Services
	usageTracker := usage.NewTracker(det, tabs, client, repo, usage.Config{
		SampleInterval: cfg.Usage.SampleInterval,
		ReportInterval: cfg.Usage.ReportInterval,
		FlushTimeout:   cfg.Usage.FlushTimeout,
	}, logger)

	idleTracker := idle.NewTracker(det, client, sessions, cfg.Idle.CheckInterval, logger)

	var screenshots *screenshot.Service
	capturer, err := screenshot.NewCapturer()
	if err != nil {
		logger.Warn().Err(err).Msg("No screenshot tool found, screenshots disabled")
	} else {
		logger.Info().Str("tool", capturer.Tool()).Msg("Screenshot capturer initialized")
		screenshots = screenshot.NewService(capturer, client, sessions, cfg.Screenshot.Interval, logger)
	}

	ag := agent.New(cfg, client, sessions, usageTracker, idleTracker, screenshots, det, logger)

	// Login before starting the loops so the first sync carries a token
	email, password := loginEmail, loginPassword
	if email == "" {
		email = os.Getenv("TRACKERD_EMAIL")
	}
	if password == "" {
		password = os.Getenv("TRACKERD_PASSWORD")
	}
	if email != "" {
		loginCtx, cancel := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
		err := ag.Login(loginCtx, email, password)
		cancel()
		if err != nil {
			return err
		}
		logger.Info().Str("user", sessions.UserName()).Msg("Logged in")
	} else {
		logger.Warn().Msg("No credentials provided, agent will idle until restarted with --email")
	}

	// Local status server
	var statusServer *status.Server
	if cfg.Status.Enabled {
		services := map[string]status.RunningReporter{"idle": idleTracker}
		if screenshots != nil {
			services["screenshot"] = screenshots
		}
		handler := status.NewHandler(cfg, sessions, usageTracker, services, reporter.New(repo), version)
		statusServer = status.NewServer(cfg, handler, logger)
		go func() {
			if err := statusServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("Status server error")
			}
		}()
		logger.Info().Str("address", "http://"+statusServer.GetAddress()).Msg("Status API available")
	}

	ag.Start()

	if err := systemd.NotifyReady(); err != nil {
		logger.Debug().Err(err).Msg("systemd notify failed")
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")
	if err := systemd.NotifyStopping(); err != nil {
		logger.Debug().Err(err).Msg("systemd notify failed")
	}

	// Agent stop performs the final usage flush
	ag.Stop()

	if statusServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Error shutting down status server")
		}
	}

	logger.Info().Msg("trackerd stopped")
	return nil
}
