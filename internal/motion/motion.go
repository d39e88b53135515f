// Package motion integrates one vessel over one tick: rate-limited heading and
// speed control, position advance and trail bookkeeping.
package motion

import (
	"math"
	"time"

	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

const (
	// HeadingSnapDeg and TurnRateSnap bound when a turn is considered complete.
	HeadingSnapDeg = 0.1
	TurnRateSnap   = 0.1
)

// Params are the control limits shared by every vessel.
type Params struct {
	MaxTurnRate    float64 // degrees per minute
	TurnAccel      float64 // degrees per minute, per minute
	MaxAccel       float64 // knots per minute
	MaxTrailLength int
}

// Step advances v by dt minutes. Aground and disabled vessels are returned unchanged.
// The trail gains a snapshot of v as it was before the step, stamped with at.
func Step(v core.Vessel, dt float64, at time.Time, p Params) core.Vessel {
	if v.Status.Terminal() || dt <= 0 {
		return v
	}

	before := v.Snapshot(at)
	heading, speed := v.Heading, v.Speed

	v = steer(v, dt, p)
	v = throttle(v, dt, p)
	v.Position = geo.Destination(v.Position, speed/60*dt, heading)

	v.Trail = append(v.Trail, before)
	v.TrimTrail(p.MaxTrailLength)
	return v
}

// steer updates heading and turn rate.
func steer(v core.Vessel, dt float64, p Params) core.Vessel {
	maxDelta := p.TurnAccel * dt

	if v.DemandedCourse == nil {
		v.TurnRate = approach(v.TurnRate, 0, maxDelta)
		v.Heading = geo.NormalizeHeading(v.Heading + v.TurnRate*dt)
		return v
	}

	target := geo.NormalizeHeading(*v.DemandedCourse)
	errDeg := geo.SignedTurn(v.Heading, target)
	if math.Abs(errDeg) <= HeadingSnapDeg && math.Abs(v.TurnRate) <= TurnRateSnap {
		v.Heading, v.TurnRate = target, 0
		return v
	}

	want := math.Copysign(math.Min(p.MaxTurnRate, math.Abs(errDeg)/dt), errDeg)
	rate := approach(v.TurnRate, want, maxDelta)
	rate = math.Max(-p.MaxTurnRate, math.Min(p.MaxTurnRate, rate))

	// Arriving on the demanded course this tick ends the turn there.
	turn := rate * dt
	if turn != 0 && math.Signbit(turn) == math.Signbit(errDeg) && math.Abs(turn) >= math.Abs(errDeg) {
		v.Heading, v.TurnRate = target, 0
		return v
	}

	v.TurnRate = rate
	v.Heading = geo.NormalizeHeading(v.Heading + turn)
	if math.Abs(geo.SignedTurn(v.Heading, target)) <= HeadingSnapDeg && math.Abs(v.TurnRate) <= TurnRateSnap {
		v.Heading, v.TurnRate = target, 0
	}
	return v
}

// throttle ramps speed toward the demanded speed, clearing the demand on arrival.
func throttle(v core.Vessel, dt float64, p Params) core.Vessel {
	if v.DemandedSpeed == nil {
		return v
	}
	target := math.Max(0, *v.DemandedSpeed)
	step := p.MaxAccel * dt

	if diff := target - v.Speed; math.Abs(diff) <= step {
		v.Speed = target
		v.DemandedSpeed = nil
		return v
	}
	v.Speed = math.Max(0, approach(v.Speed, target, step))
	return v
}

// approach moves cur toward target by at most maxDelta.
func approach(cur, target, maxDelta float64) float64 {
	switch {
	case cur < target:
		return math.Min(cur+maxDelta, target)
	case cur > target:
		return math.Max(cur-maxDelta, target)
	default:
		return cur
	}
}
