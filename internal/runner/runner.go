// Package runner ticks independent fleets. Each fleet is owned by exactly one
// goroutine for the whole run, so the kernel never sees concurrent access to
// a roster.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/internal/recorder"
	"github.com/vesselsim/vesselsim/internal/sim"
	"github.com/vesselsim/vesselsim/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Fleet is one independent roster with its own land and outputs.
type Fleet struct {
	Name     string
	Vessels  []core.Vessel
	Land     []geo.LandPolygon
	Recorder recorder.Backend // optional
	Logger   sim.Logger       // optional
}

// Result is the final state of a fleet.
type Result struct {
	Name    string
	RunID   string
	Vessels []core.Vessel
	Ticks   uint
}

// Run ticks every fleet n times, in parallel across fleets. The first error
// cancels the remaining fleets. Cancelling ctx stops all fleets between ticks.
func Run(ctx context.Context, cfg sim.Config, start time.Time, fleets []Fleet, n int) ([]Result, error) {
	results := make([]Result, len(fleets))
	g, ctx := errgroup.WithContext(ctx)

	for i, f := range fleets {
		g.Go(func() error {
			res, err := RunFleet(ctx, cfg, start, f, n)
			if err != nil {
				if f.Logger != nil {
					f.Logger.Error("fleet stopped", "fleet", f.Name, "error", err)
				}
				return fmt.Errorf("fleet %q: %w", f.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunFleet ticks a single fleet n times, recording every frame and event.
func RunFleet(ctx context.Context, cfg sim.Config, start time.Time, f Fleet, n int) (Result, error) {
	engine, err := sim.New(cfg, f.Land, start, f.Logger)
	if err != nil {
		return Result{}, err
	}

	run := &core.Run{
		ID:          uuid.NewString(),
		Name:        f.Name,
		StartTime:   start,
		TickMinutes: cfg.TickMinutes,
		SpawnPoint:  cfg.SpawnPoint,
		Roster:      f.Vessels,
	}
	rec := f.Recorder
	if rec != nil {
		if err := rec.Init(); err != nil {
			return Result{}, fmt.Errorf("init recorder: %w", err)
		}
		if err := rec.StartRun(run); err != nil {
			return Result{}, fmt.Errorf("start run: %w", err)
		}
	}

	vessels := f.Vessels
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		tick, at := engine.Ticks(), engine.Now()
		var report sim.Report
		vessels, report = engine.Step(vessels)

		if rec != nil {
			if err := record(rec, tick, at, vessels, report); err != nil {
				return Result{}, err
			}
		}
	}

	if rec != nil {
		if err := rec.EndRun(); err != nil {
			return Result{}, fmt.Errorf("end run: %w", err)
		}
		if err := rec.Close(); err != nil {
			return Result{}, fmt.Errorf("close recorder: %w", err)
		}
	}

	return Result{Name: f.Name, RunID: run.ID, Vessels: vessels, Ticks: engine.Ticks()}, nil
}

func record(rec recorder.Backend, tick uint, at time.Time, vessels []core.Vessel, report sim.Report) error {
	for i := range report.Decisions {
		if err := rec.RecordDecision(tick, &report.Decisions[i]); err != nil {
			return fmt.Errorf("record decision: %w", err)
		}
	}
	for i := range report.Groundings {
		if err := rec.RecordGrounding(&report.Groundings[i]); err != nil {
			return fmt.Errorf("record grounding: %w", err)
		}
	}
	for i := range report.Collisions {
		if err := rec.RecordCollision(&report.Collisions[i]); err != nil {
			return fmt.Errorf("record collision: %w", err)
		}
	}
	if err := rec.RecordFrame(tick, at, vessels); err != nil {
		return fmt.Errorf("record frame: %w", err)
	}
	return nil
}
