// Package otel wires the OpenTelemetry pipelines of a run. Log records from
// the slog bridge and the kernel's counters are both exported to a writer,
// normally the session log, so a headless run needs no collector.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds OTel configuration.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	BatchTimeout   time.Duration // log export timeout
	MetricInterval time.Duration // periodic metric export; zero exports only on Shutdown
	Writer         io.Writer     // required when enabled
}

// Provider owns the log and meter providers. A disabled Provider is valid and
// does nothing; the kernel then records into the global no-op meter.
type Provider struct {
	cfg    Config
	logs   *sdklog.LoggerProvider
	meters *sdkmetric.MeterProvider
}

// New builds the pipelines and installs the meter provider globally.
func New(cfg Config) (*Provider, error) {
	p := &Provider{cfg: cfg}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.Writer == nil {
		return nil, errors.New("otel enabled but no writer configured")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	logExp, err := stdoutlog.New(stdoutlog.WithWriter(cfg.Writer))
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}
	p.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp, sdklog.WithExportTimeout(cfg.BatchTimeout))),
	)

	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}
	p.meters = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, readerOpts...)),
	)
	otel.SetMeterProvider(p.meters)

	return p, nil
}

// Enabled reports whether the pipelines were built.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled
}

// LoggerProvider feeds the slog bridge. Nil when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Meter returns a meter from this provider, or from the global provider when disabled.
func (p *Provider) Meter(name string) metric.Meter {
	if p.meters == nil {
		return otel.Meter(name)
	}
	return p.meters.Meter(name)
}

// Flush exports everything buffered so far.
func (p *Provider) Flush(ctx context.Context) error {
	if !p.cfg.Enabled {
		return nil
	}
	return errors.Join(p.logs.ForceFlush(ctx), p.meters.ForceFlush(ctx))
}

// Shutdown flushes and stops both pipelines. Call it once, on exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.cfg.Enabled {
		return nil
	}
	if err := errors.Join(p.logs.Shutdown(ctx), p.meters.Shutdown(ctx)); err != nil {
		return fmt.Errorf("otel shutdown: %w", err)
	}
	return nil
}
