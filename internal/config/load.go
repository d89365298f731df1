package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and TRACKERD_*
// environment variables layered over the defaults. A missing config file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("TRACKERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := defaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if !os.IsNotExist(err) {
					return nil, fmt.Errorf("failed to read config file: %w", err)
				}
			}
			// No config file, use defaults and environment variables
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.request_timeout", cfg.API.RequestTimeout)
	v.SetDefault("usage.sample_interval", cfg.Usage.SampleInterval)
	v.SetDefault("usage.report_interval", cfg.Usage.ReportInterval)
	v.SetDefault("usage.min_sample_interval", cfg.Usage.MinSampleInterval)
	v.SetDefault("usage.max_sample_interval", cfg.Usage.MaxSampleInterval)
	v.SetDefault("usage.flush_timeout", cfg.Usage.FlushTimeout)
	v.SetDefault("idle.check_interval", cfg.Idle.CheckInterval)
	v.SetDefault("screenshot.interval", cfg.Screenshot.Interval)
	v.SetDefault("sync.interval", cfg.Sync.Interval)
	v.SetDefault("history.path", cfg.History.Path)
	v.SetDefault("history.retention", cfg.History.Retention)
	v.SetDefault("status.enabled", cfg.Status.Enabled)
	v.SetDefault("status.host", cfg.Status.Host)
	v.SetDefault("status.port", cfg.Status.Port)
	v.SetDefault("daemon.pid_file", cfg.Daemon.PIDFile)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trackerd"), nil
}
