// Package logging builds the slog logger for routerchat.
//
// The terminal belongs to the TUI, so records go to a file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/jackwu/routerchat/config"
)

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w in the configured format.
func New(cfg config.LoggingConfig, w io.Writer, colored bool) *slog.Logger {
	level := ParseLevel(cfg.Level)
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(newColorHandler(w, level, colored))
}

// Setup opens cfg.File for appending and returns a logger on it with the
// closer for the file. When the file cannot be opened the logger discards.
func Setup(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return New(cfg, io.Discard, false), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return New(cfg, io.Discard, false), io.NopCloser(nil), fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return New(cfg, io.Discard, false), io.NopCloser(nil), fmt.Errorf("opening log file: %w", err)
	}
	return New(cfg, f, cfg.Color), f, nil
}

// colorHandler writes one line per record: time, level tag, message, attrs.
type colorHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string

	timeColor  *color.Color
	keyColor   *color.Color
	levelColor map[slog.Level]*color.Color
}

func newColorHandler(w io.Writer, level slog.Level, colored bool) *colorHandler {
	h := &colorHandler{
		mu:        &sync.Mutex{},
		w:         w,
		level:     level,
		timeColor: color.New(color.FgHiBlack),
		keyColor:  color.New(color.FgHiBlack),
		levelColor: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgCyan),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
	}
	for _, c := range h.allColors() {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

func (h *colorHandler) allColors() []*color.Color {
	out := []*color.Color{h.timeColor, h.keyColor}
	for _, c := range h.levelColor {
		out = append(out, c)
	}
	return out
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(h.timeColor.Sprint(r.Time.Format("15:04:05.000")) + " ")

	tag := "??? "
	switch r.Level {
	case slog.LevelDebug:
		tag = "DBG "
	case slog.LevelInfo:
		tag = "INF "
	case slog.LevelWarn:
		tag = "WRN "
	case slog.LevelError:
		tag = "ERR "
	}
	if c, ok := h.levelColor[r.Level]; ok {
		tag = c.Sprint(tag)
	}
	buf.WriteString(tag)
	buf.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, prefix, a)
		return true
	})
	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *colorHandler) writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	buf.WriteString(h.keyColor.Sprint(" " + prefix + a.Key + "="))
	buf.WriteString(a.Value.Resolve().String())
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, a := range attrs {
		a.Key = prefix + a.Key
		newAttrs = append(newAttrs, a)
	}
	clone := *h
	clone.attrs = newAttrs
	return &clone
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	clone := *h
	clone.groups = append(newGroups, name)
	return &clone
}
