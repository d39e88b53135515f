// Command vesselsim runs the vessel motion kernel headless: it loads the
// config and a scenario, ticks every fleet and prints a summary per fleet.
//
// Usage:
//
//	vesselsim [configDir]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vesselsim/vesselsim/internal/config"
	"github.com/vesselsim/vesselsim/internal/logging"
	intOtel "github.com/vesselsim/vesselsim/internal/otel"
	"github.com/vesselsim/vesselsim/internal/recorder"
	"github.com/vesselsim/vesselsim/internal/runner"
)

const appName = "vesselsim"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime = time.Now().UTC()
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run() error {
	configDir := "."
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(logging.Options{Level: "info"})
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		return err
	}
	simCfg, err := config.Sim()
	if err != nil {
		return err
	}

	logFile, err := logging.OpenSessionLog(config.GetString("logsDir"), appName, SessionStartTime)
	if err != nil {
		return err
	}
	defer logFile.Close()

	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:        config.GetBool("otel.enabled"),
		ServiceName:    config.GetString("otel.serviceName"),
		ServiceVersion: version,
		BatchTimeout:   config.GetDuration("otel.batchTimeout"),
		MetricInterval: config.GetDuration("otel.metricInterval"),
		Writer:         logFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OTel: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("OTel shutdown failed", "error", err)
		}
	}()

	level := config.GetString("logLevel")
	SlogManager.Setup(logging.Options{
		File:     logFile,
		Level:    level,
		Provider: OTelProvider.LoggerProvider(),
		Attrs:    []slog.Attr{slog.String("version", version)},
	})
	Logger = SlogManager.Logger()
	Logger.Info("Loaded config", "dir", configDir, "log", logFile.Name())

	fleets, err := buildFleets(simCfg, func(name string) *logging.EngineLogger {
		return logging.NewFleetLogger(logFile, name, level)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticks := config.GetInt("run.ticks")
	Logger.Info("Starting run", "fleets", len(fleets), "ticks", ticks, "tickMinutes", simCfg.TickMinutes)

	started := time.Now()
	results, err := runner.Run(ctx, simCfg, SessionStartTime, fleets, ticks)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	Logger.Info("Run complete", "fleets", len(results), "duration", time.Since(started))
	for _, r := range results {
		SlogManager.Fleet(r.Name).Info("Fleet finished", "run", r.RunID, "ticks", r.Ticks, "vessels", len(r.Vessels))
	}

	summaries := make([]recorder.Summary, 0, len(fleets))
	for _, f := range fleets {
		summaries = append(summaries, f.Recorder.(*recorder.Memory).Summary())
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
