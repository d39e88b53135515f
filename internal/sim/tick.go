// Package sim runs the fleet-wide tick.
//
// A tick has five fixed passes over one pre-tick snapshot of the fleet:
//
//  1. Avoidance pass - every avoidance-enabled vessel is arbitrated against the
//     same snapshot, so the order of the roster never biases decisions.
//  2. Grounding pass - vessels inside land go aground.
//  3. Collision pass - overlapping active vessels are disabled.
//  4. Motion pass - heading, speed and position are integrated.
//  5. Trail pass - trails are cut to the configured length.
package sim

import (
	"time"

	"github.com/vesselsim/vesselsim/internal/avoidance"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/internal/motion"
	"github.com/vesselsim/vesselsim/pkg/core"
)

// MetresPerNM converts hull dimensions to nautical miles.
const MetresPerNM = 1852.0

// Report lists what happened during one tick.
type Report struct {
	Decisions  []core.DecisionEvent
	Released   []string // vessels whose avoidance state was cleared
	Groundings []core.GroundingEvent
	Collisions []core.CollisionEvent
}

// Tick advances the fleet by dt minutes and returns the updated roster in the
// same order. The input slice and its vessels are not modified.
func Tick(vessels []core.Vessel, land []geo.LandPolygon, cfg Config, dt float64, at time.Time) ([]core.Vessel, Report) {
	var report Report

	snapshot := make([]core.Vessel, len(vessels))
	next := make([]core.Vessel, len(vessels))
	for i, v := range vessels {
		snapshot[i] = v.Clone()
		next[i] = v.Clone()
	}

	// Pass 1: avoidance
	ap := cfg.avoidanceParams()
	for i := range next {
		out := avoidance.Arbitrate(next[i], snapshot, land, ap)
		next[i] = out.Vessel
		if out.Behavior != "" {
			report.Decisions = append(report.Decisions, core.DecisionEvent{
				VesselID: out.Vessel.ID,
				Behavior: out.Behavior,
				Reason:   out.Decision.Reason,
			})
		}
		if out.Cleared {
			report.Released = append(report.Released, out.Vessel.ID)
		}
	}

	// Pass 2: grounding
	for i := range next {
		v := &next[i]
		if v.Status.Terminal() {
			continue
		}
		for _, lp := range land {
			if lp.Contains(v.Position) {
				v.Status = core.StatusAground
				report.Groundings = append(report.Groundings, core.GroundingEvent{
					VesselID: v.ID,
					Time:     at,
					Position: v.Position,
				})
				break
			}
		}
	}

	// Pass 3: ship collisions
	report.Collisions = resolveCollisions(next, at)

	// Pass 4: motion
	mp := cfg.motionParams()
	for i := range next {
		next[i] = motion.Step(next[i], dt, at, mp)
	}

	// Pass 5: trails
	for i := range next {
		next[i].TrimTrail(cfg.MaxTrailLength)
	}

	return next, report
}

// resolveCollisions disables vessels whose hulls overlap. Participation is
// decided from the statuses at the start of the pass, so one vessel can be
// disabled by several contacts. Equal lengths disable both vessels; otherwise
// only the shorter one.
func resolveCollisions(vessels []core.Vessel, at time.Time) []core.CollisionEvent {
	active := make([]int, 0, len(vessels))
	for i := range vessels {
		if vessels[i].Active() {
			active = append(active, i)
		}
	}

	var events []core.CollisionEvent
	disabled := make(map[int]bool)
	for x := 0; x < len(active); x++ {
		for y := x + 1; y < len(active); y++ {
			a, b := &vessels[active[x]], &vessels[active[y]]
			sep := geo.PlanarDistance(a.Position, b.Position)
			limit := (a.Dimensions.Length + b.Dimensions.Length) / 2 / MetresPerNM
			if sep >= limit {
				continue
			}

			ev := core.CollisionEvent{Time: at, VesselA: a.ID, VesselB: b.ID, Separation: sep}
			switch {
			case a.Dimensions.Length == b.Dimensions.Length:
				disabled[active[x]], disabled[active[y]] = true, true
				ev.Disabled = []string{a.ID, b.ID}
			case a.Dimensions.Length < b.Dimensions.Length:
				disabled[active[x]] = true
				ev.Disabled = []string{a.ID}
			default:
				disabled[active[y]] = true
				ev.Disabled = []string{b.ID}
			}
			events = append(events, ev)
		}
	}

	for i := range disabled {
		vessels[i].Status = core.StatusDisabled
	}
	return events
}
