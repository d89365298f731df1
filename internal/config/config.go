package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all agent configuration
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Usage      UsageConfig      `mapstructure:"usage"`
	Idle       IdleConfig       `mapstructure:"idle"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	Sync       SyncConfig       `mapstructure:"sync"`
	History    HistoryConfig    `mapstructure:"history"`
	Status     StatusConfig     `mapstructure:"status"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// APIConfig holds backend API client configuration
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// UsageConfig holds usage sampler/reporter configuration
type UsageConfig struct {
	SampleInterval    time.Duration `mapstructure:"sample_interval"`
	ReportInterval    time.Duration `mapstructure:"report_interval"`
	MinSampleInterval time.Duration `mapstructure:"min_sample_interval"`
	MaxSampleInterval time.Duration `mapstructure:"max_sample_interval"`
	FlushTimeout      time.Duration `mapstructure:"flush_timeout"`
}

// IdleConfig holds idle tracking configuration
type IdleConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// ScreenshotConfig holds screenshot service configuration
type ScreenshotConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// SyncConfig holds dashboard sync polling configuration
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// HistoryConfig holds the local history database configuration
type HistoryConfig struct {
	Path      string        `mapstructure:"path"`      // Path to SQLite database file
	Retention time.Duration `mapstructure:"retention"` // Zero disables pruning
}

// StatusConfig holds the local status HTTP server configuration
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `mapstructure:"pid_file"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api",
			RequestTimeout: 10 * time.Second,
		},
		Usage: UsageConfig{
			SampleInterval:    10 * time.Second,
			ReportInterval:    60 * time.Second,
			MinSampleInterval: 5 * time.Second,
			MaxSampleInterval: 300 * time.Second,
			FlushTimeout:      10 * time.Second,
		},
		Idle: IdleConfig{
			CheckInterval: 5 * time.Second,
		},
		Screenshot: ScreenshotConfig{
			Interval: 10 * time.Second,
		},
		Sync: SyncConfig{
			Interval: 5 * time.Second,
		},
		History: HistoryConfig{
			Path:      "", // Empty means ~/.config/trackerd/trackerd.db
			Retention: 90 * 24 * time.Hour,
		},
		Status: StatusConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    10000 + os.Getuid(),
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/trackerd-%d.pid", os.Getuid()),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base URL cannot be empty")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api request timeout must be positive")
	}

	if c.Usage.SampleInterval < c.Usage.MinSampleInterval {
		return fmt.Errorf("sample interval (%v) cannot be less than minimum (%v)",
			c.Usage.SampleInterval, c.Usage.MinSampleInterval)
	}
	if c.Usage.SampleInterval > c.Usage.MaxSampleInterval {
		return fmt.Errorf("sample interval (%v) cannot be greater than maximum (%v)",
			c.Usage.SampleInterval, c.Usage.MaxSampleInterval)
	}
	if c.Usage.ReportInterval < c.Usage.SampleInterval {
		return fmt.Errorf("report interval (%v) cannot be less than sample interval (%v)",
			c.Usage.ReportInterval, c.Usage.SampleInterval)
	}
	if c.Usage.FlushTimeout <= 0 {
		return fmt.Errorf("flush timeout must be positive")
	}

	if c.Idle.CheckInterval <= 0 {
		return fmt.Errorf("idle check interval must be positive")
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history retention cannot be negative")
	}

	if c.Status.Enabled {
		if c.Status.Port < 1 || c.Status.Port > 65535 {
			return fmt.Errorf("status port must be between 1 and 65535, got %d", c.Status.Port)
		}
		if c.Status.Host == "" {
			return fmt.Errorf("status host cannot be empty")
		}
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SampleSeconds returns the sample granularity in seconds, attributed in
// full to whatever was frontmost at the instant of sampling.
func (c *Config) SampleSeconds() int64 {
	return int64(c.Usage.SampleInterval.Seconds())
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  API:
    Base URL: %s
    Request Timeout: %v
  Usage:
    Sample Interval: %v
    Report Interval: %v
    Flush Timeout: %v
  Idle:
    Check Interval: %v
  Screenshot:
    Interval: %v
  Sync:
    Interval: %v
  History:
    Path: %s
    Retention: %v
  Status:
    Enabled: %v
    Address: %s:%d
  Daemon:
    PID File: %s
  Logging:
    Level: %s
    Format: %s`,
		c.API.BaseURL,
		c.API.RequestTimeout,
		c.Usage.SampleInterval,
		c.Usage.ReportInterval,
		c.Usage.FlushTimeout,
		c.Idle.CheckInterval,
		c.Screenshot.Interval,
		c.Sync.Interval,
		c.History.Path,
		c.History.Retention,
		c.Status.Enabled,
		c.Status.Host,
		c.Status.Port,
		c.Daemon.PIDFile,
		c.Logging.Level,
		c.Logging.Format,
	)
}
