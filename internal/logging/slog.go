// Package logging sets up the process loggers: a slog logger for the driver
// (console or session file, optionally bridged to OTel) and zerolog JSON
// loggers for the per-fleet engines.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// scopeName is the instrumentation scope of records sent through the OTel bridge.
const scopeName = "github.com/vesselsim/vesselsim"

// stdout is swapped out by tests.
var stdout io.Writer = os.Stdout

// Options configures SlogManager.Setup.
type Options struct {
	File     io.Writer              // session log; stdout when nil
	Level    string                 // debug, info, warn or error; anything else is info
	Provider *sdklog.LoggerProvider // optional OTel log pipeline
	Attrs    []slog.Attr            // added to every record, e.g. the session id
}

// SlogManager owns the driver's slog logger. Setup may be called again once
// the config is known; loggers handed out earlier keep their old handler.
type SlogManager struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

// NewSlogManager returns a manager whose Logger is slog.Default until Setup.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// ParseLevel maps a config level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Setup replaces the logger according to opts.
func (m *SlogManager) Setup(opts Options) {
	out := opts.File
	if out == nil {
		out = stdout
	}

	text := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: utcTime,
	})

	var h slog.Handler = text
	if opts.Provider != nil {
		h = fanout{text, otelslog.NewHandler(scopeName, otelslog.WithLoggerProvider(opts.Provider))}
	}
	if len(opts.Attrs) > 0 {
		h = h.WithAttrs(opts.Attrs)
	}

	m.provider = opts.Provider
	m.logger = slog.New(h)
	m.logger.Debug("logging ready", "level", ParseLevel(opts.Level).String())
}

// Logger returns the current logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Fleet returns a child logger tagged with a fleet name.
func (m *SlogManager) Fleet(name string) *slog.Logger {
	return m.Logger().With("fleet", name)
}

// Flush pushes buffered OTel records to the exporter.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.ForceFlush(ctx)
}

// utcTime renders record timestamps as RFC 3339 in UTC so session logs from
// different machines sort the same way.
func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey || a.Value.Kind() != slog.KindTime {
		return a
	}
	return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339))
}
