package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.BaseURL != "http://127.0.0.1:8000" {
			t.Errorf("expected base URL http://127.0.0.1:8000, got %s", config.Server.BaseURL)
		}

		interval, err := config.Poll.PollInterval()
		if err != nil {
			t.Fatalf("default poll interval should parse: %v", err)
		}
		if interval != 2*time.Second {
			t.Errorf("expected poll interval 2s, got %v", interval)
		}

		if config.Database.Path != "./wsctl.db" {
			t.Errorf("expected database path ./wsctl.db, got %s", config.Database.Path)
		}

		if config.DevServer.Addr() != "127.0.0.1:8000" {
			t.Errorf("expected dev server addr 127.0.0.1:8000, got %s", config.DevServer.Addr())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[server]
base_url = "http://scraper.internal:9000"
token = "secret"
timeout = "5s"

[poll]
interval = "500ms"
max_failures = 5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.BaseURL != "http://scraper.internal:9000" {
			t.Errorf("expected custom base URL, got %s", config.Server.BaseURL)
		}
		if timeout, _ := config.Server.RequestTimeout(); timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", timeout)
		}
		if interval, _ := config.Poll.PollInterval(); interval != 500*time.Millisecond {
			t.Errorf("expected interval 500ms, got %v", interval)
		}
		if config.Poll.MaxFailures != 5 {
			t.Errorf("expected max failures 5, got %d", config.Poll.MaxFailures)
		}
		if config.Database.Path != "./wsctl.db" {
			t.Errorf("missing keys should keep defaults, got database path %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Invalid Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[poll]\ninterval = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty base url", mutate: func(c *Config) { c.Server.BaseURL = " " }},
			{name: "zero interval", mutate: func(c *Config) { c.Poll.Interval = "0s" }},
			{name: "no failure budget", mutate: func(c *Config) { c.Poll.MaxFailures = 0 }},
			{name: "negative rate", mutate: func(c *Config) { c.Server.RateLimit = -1 }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvBaseURL, "http://from-env:1234")
		t.Setenv(EnvToken, "env-token")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Server.BaseURL != "http://from-env:1234" {
			t.Errorf("expected env base URL, got %s", config.Server.BaseURL)
		}
		if config.Server.Token != "env-token" {
			t.Errorf("expected env token, got %s", config.Server.Token)
		}
	})
}
