package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvBaseURL = "WSCTL_BASE_URL"
	EnvToken   = "WSCTL_TOKEN"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Poll      PollConfig      `toml:"poll"`
	Database  DatabaseConfig  `toml:"database"`
	DevServer DevServerConfig `toml:"dev_server"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig describes how to reach the webscraper application.
type ServerConfig struct {
	BaseURL     string  `toml:"base_url"`
	Token       string  `toml:"token"`
	Timeout     string  `toml:"timeout"`
	RateLimit   float64 `toml:"rate_limit"`
	Burst       int     `toml:"burst"`
	SessionPath string  `toml:"session_path"` // browser session captured with `wsctl setup session`
}

// PollConfig contains task status polling settings.
type PollConfig struct {
	Interval    string `toml:"interval"`
	MaxFailures int    `toml:"max_failures"`
}

// DatabaseConfig contains activity history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DevServerConfig contains settings for the local stand-in webscraper endpoints.
type DevServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// RequestTimeout parses the per-request timeout.
func (s ServerConfig) RequestTimeout() (time.Duration, error) {
	return parseDuration("server.timeout", s.Timeout)
}

// PollInterval parses the status poll period.
func (p PollConfig) PollInterval() (time.Duration, error) {
	return parseDuration("poll.interval", p.Interval)
}

// Addr returns the host:port the dev server listens on.
func (d DevServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, key)
	}
	return d, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("%w: server.base_url is required", ErrInvalidConfig)
	}
	if _, err := c.Server.RequestTimeout(); err != nil {
		return err
	}
	if _, err := c.Poll.PollInterval(); err != nil {
		return err
	}
	if c.Poll.MaxFailures < 1 {
		return fmt.Errorf("%w: poll.max_failures must be at least 1", ErrInvalidConfig)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides server settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Server.Token = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
