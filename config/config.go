package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// EngineConfig holds execution engine configuration
type EngineConfig struct {
	Interpreter        string `mapstructure:"interpreter"`
	DefaultTimeoutSec  int    `mapstructure:"default_timeout_sec"`
	MinTimeoutSec      int    `mapstructure:"min_timeout_sec"`
	MaxTimeoutSec      int    `mapstructure:"max_timeout_sec"`
	MemoryMB           int    `mapstructure:"memory_mb"`
	CPUTimeSec         int    `mapstructure:"cpu_time_sec"`
	MaxConcurrent      int    `mapstructure:"max_concurrent"`
	WorkspaceIsolation bool   `mapstructure:"workspace_isolation"`
	WorkspaceDir       string `mapstructure:"workspace_dir"`
	GracePeriodSec     int    `mapstructure:"grace_period_sec"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration from the
// default search paths (. and ./config).
func New() (*Config, error) {
	return Load("")
}

// Load loads the configuration from the given file path. An empty path
// falls back to searching the default locations; a missing config file
// is not an error and the defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Set default values
	v.SetDefault("server.transport", "http")
	v.SetDefault("server.http_port", 8000)

	v.SetDefault("engine.interpreter", "python3")
	v.SetDefault("engine.default_timeout_sec", 5)
	v.SetDefault("engine.min_timeout_sec", 1)
	v.SetDefault("engine.max_timeout_sec", 30)
	v.SetDefault("engine.memory_mb", 128)
	v.SetDefault("engine.cpu_time_sec", 10)
	v.SetDefault("engine.max_concurrent", 10)
	v.SetDefault("engine.workspace_isolation", true)
	v.SetDefault("engine.workspace_dir", "")
	v.SetDefault("engine.grace_period_sec", 1)

	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "http" && c.Server.Transport != "mcp" {
		return fmt.Errorf("invalid server.transport: %s, must be 'http' or 'mcp'", c.Server.Transport)
	}

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.Engine.Interpreter == "" {
		return fmt.Errorf("engine.interpreter must not be empty")
	}

	if c.Engine.MinTimeoutSec <= 0 {
		return fmt.Errorf("engine.min_timeout_sec must be positive, got: %d", c.Engine.MinTimeoutSec)
	}

	if c.Engine.MaxTimeoutSec < c.Engine.MinTimeoutSec {
		return fmt.Errorf("engine.max_timeout_sec must be >= engine.min_timeout_sec, got: %d < %d",
			c.Engine.MaxTimeoutSec, c.Engine.MinTimeoutSec)
	}

	if c.Engine.DefaultTimeoutSec < c.Engine.MinTimeoutSec || c.Engine.DefaultTimeoutSec > c.Engine.MaxTimeoutSec {
		return fmt.Errorf("engine.default_timeout_sec must be within [%d, %d], got: %d",
			c.Engine.MinTimeoutSec, c.Engine.MaxTimeoutSec, c.Engine.DefaultTimeoutSec)
	}

	if c.Engine.MemoryMB <= 0 {
		return fmt.Errorf("engine.memory_mb must be positive, got: %d", c.Engine.MemoryMB)
	}

	if c.Engine.CPUTimeSec <= 0 {
		return fmt.Errorf("engine.cpu_time_sec must be positive, got: %d", c.Engine.CPUTimeSec)
	}

	if c.Engine.MaxConcurrent <= 0 {
		return fmt.Errorf("engine.max_concurrent must be positive, got: %d", c.Engine.MaxConcurrent)
	}

	if c.Engine.GracePeriodSec <= 0 {
		return fmt.Errorf("engine.grace_period_sec must be positive, got: %d", c.Engine.GracePeriodSec)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
		"dpanic": true, "panic": true, "fatal": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// DefaultTimeout returns the default execution timeout as a duration
func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.Engine.DefaultTimeoutSec) * time.Second
}

// MinTimeout returns the lower bound for request timeouts
func (c *Config) MinTimeout() time.Duration {
	return time.Duration(c.Engine.MinTimeoutSec) * time.Second
}

// MaxTimeout returns the upper bound for request timeouts
func (c *Config) MaxTimeout() time.Duration {
	return time.Duration(c.Engine.MaxTimeoutSec) * time.Second
}

// GracePeriod returns the interval between graceful and forced
// termination during timeout escalation
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Engine.GracePeriodSec) * time.Second
}

// MaxMemoryBytes returns the per-run memory ceiling in bytes
func (c *Config) MaxMemoryBytes() int64 {
	return int64(c.Engine.MemoryMB) * 1024 * 1024
}

// MaxCPUTime returns the per-run CPU time ceiling as a duration
func (c *Config) MaxCPUTime() time.Duration {
	return time.Duration(c.Engine.CPUTimeSec) * time.Second
}
