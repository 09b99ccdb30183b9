// Package config loads the service configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Runs    RunsConfig    `mapstructure:"runs"`
}

// ServerConfig configures the HTTP/streaming transport.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
	Debug        bool          `mapstructure:"debug"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Heartbeat    time.Duration `mapstructure:"heartbeat"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RunsConfig configures per-run state handling.
type RunsConfig struct {
	// RetainedRuns bounds the LRU of finished-run snapshots kept for late
	// readers. Live runs are never evicted.
	RetainedRuns int `mapstructure:"retained_runs"`
	// ClientBuffer is the per-subscriber event channel depth; slow clients
	// past this depth have updates dropped rather than blocking the run.
	ClientBuffer int `mapstructure:"client_buffer"`
	// ArchiveDir, when set, persists final run views as JSON files there so
	// ended runs survive LRU eviction and restarts. Empty disables it.
	ArchiveDir string `mapstructure:"archive_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			EnableCORS:   true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Heartbeat:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Runs: RunsConfig{
			RetainedRuns: 128,
			ClientBuffer: 100,
		},
	}
}

// Load reads configuration from the given file path, or from the default
// search locations when path is empty ("aria-config.yaml" in the working
// directory or $HOME). Environment variables prefixed ARIA_ override file
// values (ARIA_SERVER_PORT, ARIA_LOGGING_LEVEL, ...). A missing config file
// is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.enable_cors", defaults.Server.EnableCORS)
	v.SetDefault("server.debug", defaults.Server.Debug)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.heartbeat", defaults.Server.Heartbeat)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("runs.retained_runs", defaults.Runs.RetainedRuns)
	v.SetDefault("runs.client_buffer", defaults.Runs.ClientBuffer)
	v.SetDefault("runs.archive_dir", defaults.Runs.ArchiveDir)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("aria-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix("ARIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Runs.RetainedRuns <= 0 {
		return fmt.Errorf("retained_runs must be positive, got %d", c.Runs.RetainedRuns)
	}
	if c.Runs.ClientBuffer <= 0 {
		return fmt.Errorf("client_buffer must be positive, got %d", c.Runs.ClientBuffer)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
