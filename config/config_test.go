package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/routerchat/router"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[router]
url = "http://router.internal:9000/generate"
logs_url = "http://router.internal:9000/logs"

[dashboard]
url = "https://analytics.internal"

[chat]
greeting = "Hi there"

[logging]
level = "debug"
format = "json"
file = "/tmp/routerchat.log"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://router.internal:9000/generate", cfg.Router.URL)
	assert.Equal(t, "http://router.internal:9000/logs", cfg.Router.LogsURL)
	assert.Equal(t, "https://analytics.internal", cfg.Dashboard.URL)
	assert.Equal(t, "Hi there", cfg.Chat.Greeting)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/routerchat.log", cfg.Logging.File)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[dashboard]
url = "http://localhost:9501"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, router.DefaultGenerateURL, cfg.Router.URL)
	assert.Equal(t, router.DefaultLogsURL, cfg.Router.LogsURL)
	assert.Equal(t, "http://localhost:9501", cfg.Dashboard.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("ROUTER_HOST", "10.0.0.5:8000")
	path := writeConfig(t, `
[router]
url = "http://${ROUTER_HOST}/generate"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/generate", cfg.Router.URL)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Router, cfg.Router)
	assert.Equal(t, DefaultDashboardURL, cfg.Dashboard.URL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "[router\nurl = ")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty router url", mutate: func(c *Config) { c.Router.URL = "" }, wantErr: "router.url is required"},
		{name: "bad scheme", mutate: func(c *Config) { c.Router.LogsURL = "ftp://x/logs" }, wantErr: "router.logs_url must be http or https"},
		{name: "no host", mutate: func(c *Config) { c.Dashboard.URL = "http://" }, wantErr: "dashboard.url has no host"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, filepath.Join("/cfg", "routerchat", "config.toml"), DefaultPath())
	assert.Equal(t, filepath.Join("/state", "routerchat", "routerchat.log"), DefaultLogPath())
}
