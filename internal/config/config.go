// Package config loads application configuration from environment variables,
// optionally overlaid with a YAML overview file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alisw/ci-overview/internal/catalog"
)

// Config holds the application configuration.
type Config struct {
	GitHubToken     string
	ListenAddr      string
	RefreshInterval time.Duration
	RecentWindow    time.Duration

	// Definitions tree location: a local directory when DefsDir is set,
	// otherwise fetched remotely from DefsRepo/DefsBranch/DefsPath.
	DefsDir    string
	DefsRepo   string
	DefsBranch string
	DefsPath   string

	LogFile  string
	LogLevel string

	// Filters restrict which checks the service renders; usually supplied by
	// the YAML overview file.
	Filters catalog.Filters

	recentFromEnv bool
}

// HasCredentials reports whether a GitHub token is configured. Service mode
// treats its absence as startup-fatal.
func (c *Config) HasCredentials() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. GITHUB_TOKEN carries the credential. Optional variables with
// defaults: CIOVERVIEW_LISTEN_ADDR (127.0.0.1:8000),
// CIOVERVIEW_REFRESH_INTERVAL (60s), CIOVERVIEW_RECENT_WINDOW (24h),
// CIOVERVIEW_DEFS_DIR (empty: fetch remotely), CIOVERVIEW_DEFS_REPO
// (alisw/ali-bot), CIOVERVIEW_DEFS_BRANCH (master), CIOVERVIEW_DEFS_PATH
// (ci/repo-config), CIOVERVIEW_LOG_FILE (empty: stderr only),
// CIOVERVIEW_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		ListenAddr:      "127.0.0.1:8000",
		RefreshInterval: 60 * time.Second,
		RecentWindow:    24 * time.Hour,
		DefsDir:         os.Getenv("CIOVERVIEW_DEFS_DIR"),
		DefsRepo:        "alisw/ali-bot",
		DefsBranch:      "master",
		DefsPath:        "ci/repo-config",
		LogFile:         os.Getenv("CIOVERVIEW_LOG_FILE"),
		LogLevel:        "info",
	}

	if v, ok := os.LookupEnv("CIOVERVIEW_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("CIOVERVIEW_REFRESH_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CIOVERVIEW_REFRESH_INTERVAL has invalid duration %q: %w", v, err)
		}
		cfg.RefreshInterval = parsed
	}
	if v, ok := os.LookupEnv("CIOVERVIEW_RECENT_WINDOW"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CIOVERVIEW_RECENT_WINDOW has invalid duration %q: %w", v, err)
		}
		cfg.RecentWindow = parsed
		cfg.recentFromEnv = true
	}
	if v, ok := os.LookupEnv("CIOVERVIEW_DEFS_REPO"); ok {
		cfg.DefsRepo = v
	}
	if v, ok := os.LookupEnv("CIOVERVIEW_DEFS_BRANCH"); ok {
		cfg.DefsBranch = v
	}
	if v, ok := os.LookupEnv("CIOVERVIEW_DEFS_PATH"); ok {
		cfg.DefsPath = v
	}
	if v, ok := os.LookupEnv("CIOVERVIEW_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// fileConfig is the YAML overview file shape.
type fileConfig struct {
	RecentWindow string          `yaml:"recent_window"`
	Filters      catalog.Filters `yaml:"filters"`
}

// ApplyFile overlays a YAML overview file onto the config. Filter lists come
// from the file; a recent_window in the file applies only when the
// environment did not already set one (env wins).
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading overview file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing overview file %s: %w", path, err)
	}

	c.Filters = fc.Filters
	if fc.RecentWindow != "" && !c.recentFromEnv {
		parsed, err := time.ParseDuration(fc.RecentWindow)
		if err != nil {
			return fmt.Errorf("overview file %s: invalid recent_window %q: %w", path, fc.RecentWindow, err)
		}
		c.RecentWindow = parsed
	}
	return nil
}
