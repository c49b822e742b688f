package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/routerchat/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNew_TextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "info", Format: "text"}, &buf, false)

	logger.Debug("hidden")
	logger.With("component", "chat").Info("prompt submitted", "request_id", "abc")
	logger.WithGroup("http").Warn("slow", "status", 200)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF prompt submitted component=chat request_id=abc")
	assert.Contains(t, out, "WRN slow http.status=200")
	assert.NotContains(t, out, "\x1b[")
}

func TestNew_ColoredTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "debug"}, &buf, true)

	logger.Error("boom")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "boom")
}

func TestNew_JSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "debug", Format: "json"}, &buf, false)

	logger.Debug("reply received", "model", "small-model")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "reply received", rec["msg"])
	assert.Equal(t, "small-model", rec["model"])
}

func TestSetup_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "routerchat.log")
	logger, closer, err := Setup(config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INF hello")
}

func TestSetup_ColorSetting(t *testing.T) {
	dir := t.TempDir()
	read := func(cfg config.LoggingConfig) string {
		logger, closer, err := Setup(cfg)
		require.NoError(t, err)
		logger.Warn("slow reply", "ms", 900)
		require.NoError(t, closer.Close())
		data, err := os.ReadFile(cfg.File)
		require.NoError(t, err)
		return string(data)
	}

	colored := read(config.LoggingConfig{Level: "info", File: filepath.Join(dir, "color.log"), Color: true})
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "slow reply")

	plain := read(config.LoggingConfig{Level: "info", File: filepath.Join(dir, "plain.log")})
	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, plain, "WRN slow reply")
}

func TestSetup_NoFileDiscards(t *testing.T) {
	logger, closer, err := Setup(config.LoggingConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
