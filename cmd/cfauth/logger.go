// ABOUTME: Logger setup with a colorized text handler for terminals
// ABOUTME: JSON output is used for log shipping and inside Lambda; secret-bearing keys are masked in both

package main

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/cfauth/internal/config"
)

// redactedKeys never reach the log output with their real value.
var redactedKeys = map[string]bool{
	"password":          true,
	"password_hash":     true,
	"token":             true,
	"authorization":     true,
	"cookie":            true,
	"signing_key":       true,
	"secret_access_key": true,
}

const redacted = "***"

var levelBadges = map[slog.Level]string{
	slog.LevelDebug: color.MagentaString("DBG"),
	slog.LevelInfo:  color.CyanString("INF"),
	slog.LevelWarn:  color.YellowString("WRN"),
	slog.LevelError: color.New(color.FgRed, color.Bold).Sprint("ERR"),
}

func parseLevel(s string) slog.Level {
	switch s {
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

func setupLogger(cfg config.LoggingConfig, out io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if redactedKeys[strings.ToLower(a.Key)] {
					a.Value = slog.StringValue(redacted)
				}
				return a
			},
		}))
	}

	return slog.New(&colorHandler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
	})
}

// colorHandler writes one line per record:
//
//	15:04:05 INF [auth] message key=value ...
//
// The component attr becomes the bracketed tag. Attrs added through WithAttrs
// are rendered once and reused; derived handlers share the writer lock.
type colorHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Level
	component string
	preformat string
	prefix    string // group path, e.g. "req."
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(color.HiBlackString(r.Time.Format("15:04:05")))
	b.WriteByte(' ')
	badge, ok := levelBadges[r.Level]
	if !ok {
		badge = r.Level.String()
	}
	b.WriteString(badge)
	b.WriteByte(' ')
	if h.component != "" {
		b.WriteString(color.GreenString("[" + h.component + "] "))
	}
	b.WriteString(r.Message)
	b.WriteString(h.preformat)

	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	var b strings.Builder
	b.WriteString(h.preformat)
	for _, a := range attrs {
		if a.Key == "component" && h.prefix == "" {
			next.component = a.Value.String()
			continue
		}
		writeAttr(&b, h.prefix, a)
	}
	next.preformat = b.String()
	return &next
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// writeAttr renders a as " key=value", flattening groups into dotted keys.
func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, groupPrefix, ga)
		}
		return
	}

	b.WriteString(color.HiBlackString(" " + prefix + a.Key + "="))
	if redactedKeys[strings.ToLower(a.Key)] {
		b.WriteString(redacted)
		return
	}
	value := a.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	b.WriteString(value)
}
