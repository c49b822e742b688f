// Package config loads routerchat settings from a TOML file.
//
// The file is optional. Values may reference the environment with ${VAR};
// a .env file in the working directory is loaded by the binary before Load
// runs, so its variables expand as well.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/jackwu/routerchat/router"
)

const DefaultDashboardURL = "http://localhost:8501"

type Config struct {
	Router    RouterConfig    `toml:"router"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Chat      ChatConfig      `toml:"chat"`
	Logging   LoggingConfig   `toml:"logging"`
}

type RouterConfig struct {
	URL     string `toml:"url"`
	LogsURL string `toml:"logs_url"`
}

type DashboardConfig struct {
	URL string `toml:"url"`
}

type ChatConfig struct {
	Greeting string `toml:"greeting"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
	File   string `toml:"file"`
	Color  bool   `toml:"color"` // ANSI colors in text format, for tail -f
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Router: RouterConfig{
			URL:     router.DefaultGenerateURL,
			LogsURL: router.DefaultLogsURL,
		},
		Dashboard: DashboardConfig{URL: DefaultDashboardURL},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   DefaultLogPath(),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/routerchat/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "routerchat", "config.toml")
}

// DefaultLogPath returns $XDG_STATE_HOME/routerchat/routerchat.log.
func DefaultLogPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "routerchat", "routerchat.log")
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, os.ErrNotExist):
		return cfg, cfg.Validate()
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the variable's value, empty when unset.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarRe.FindStringSubmatch(match)[1])
	})
}

// Validate checks the URLs and logging settings.
func (c *Config) Validate() error {
	if err := validateURL("router.url", c.Router.URL); err != nil {
		return err
	}
	if err := validateURL("router.logs_url", c.Router.LogsURL); err != nil {
		return err
	}
	if err := validateURL("dashboard.url", c.Dashboard.URL); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", field, raw)
	}
	return nil
}
