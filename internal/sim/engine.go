package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Engine drives Tick for one fleet with a simulation clock, logging and metrics.
// An Engine is not safe for concurrent use; run one Engine per fleet.
type Engine struct {
	cfg    Config
	land   []geo.LandPolygon
	logger Logger

	start time.Time
	ticks uint

	// OTEL metrics
	tickCount metric.Int64Counter
	aground   metric.Int64Counter
	disabled  metric.Int64Counter
	decisions metric.Int64Counter
}

// New creates an Engine. The config is validated; land polygons are shared read-only.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(cfg Config, land []geo.LandPolygon, start time.Time, logger Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = nopLogger{}
	}

	e := &Engine{
		cfg:    cfg,
		land:   land,
		logger: logger,
		start:  start,
	}

	m := meter()
	var err error

	e.tickCount, err = m.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Total fleet ticks executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	e.aground, err = m.Int64Counter(
		"sim.vessels.aground",
		metric.WithDescription("Vessels that ran aground"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aground counter: %w", err)
	}

	e.disabled, err = m.Int64Counter(
		"sim.vessels.disabled",
		metric.WithDescription("Vessels disabled by collision"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating disabled counter: %w", err)
	}

	e.decisions, err = m.Int64Counter(
		"sim.decisions",
		metric.WithDescription("Navigation decisions applied, by behavior"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decisions counter: %w", err)
	}

	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Now returns the simulation time of the next tick.
func (e *Engine) Now() time.Time {
	return e.start.Add(time.Duration(float64(e.ticks) * e.cfg.TickMinutes * float64(time.Minute)))
}

// Ticks returns the number of ticks run so far.
func (e *Engine) Ticks() uint {
	return e.ticks
}

// Step runs one tick of cfg.TickMinutes over vessels.
func (e *Engine) Step(vessels []core.Vessel) ([]core.Vessel, Report) {
	at := e.Now()
	start := time.Now()

	next, report := Tick(vessels, e.land, e.cfg, e.cfg.TickMinutes, at)
	tick := e.ticks
	e.ticks++

	for i := range report.Groundings {
		report.Groundings[i].Tick = tick
		g := report.Groundings[i]
		e.logger.Info("vessel aground", "vessel", g.VesselID, "tick", tick, "lat", g.Position.Lat, "lon", g.Position.Lon)
	}
	for i := range report.Collisions {
		report.Collisions[i].Tick = tick
		c := report.Collisions[i]
		e.logger.Info("vessel collision", "a", c.VesselA, "b", c.VesselB, "separation", c.Separation, "disabled", c.Disabled, "tick", tick)
	}
	for _, d := range report.Decisions {
		e.logger.Debug("navigation decision", "vessel", d.VesselID, "behavior", d.Behavior, "reason", d.Reason)
	}
	for _, id := range report.Released {
		e.logger.Debug("avoidance released", "vessel", id)
	}

	e.record(report)
	e.logger.Debug("tick complete", "tick", tick, "vessels", len(next), "duration", time.Since(start))

	return next, report
}

func (e *Engine) record(report Report) {
	ctx := context.Background()
	e.tickCount.Add(ctx, 1)
	if n := len(report.Groundings); n > 0 {
		e.aground.Add(ctx, int64(n))
	}
	disabled := make(map[string]struct{})
	for _, c := range report.Collisions {
		for _, id := range c.Disabled {
			disabled[id] = struct{}{}
		}
	}
	if len(disabled) > 0 {
		e.disabled.Add(ctx, int64(len(disabled)))
	}
	for _, d := range report.Decisions {
		e.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("behavior", d.Behavior)))
	}
}
