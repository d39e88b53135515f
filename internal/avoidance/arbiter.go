package avoidance

import (
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

// Outcome is the result of arbitrating one vessel.
type Outcome struct {
	Vessel   core.Vessel
	Behavior string // winning behavior, empty if all abstained
	Decision core.NavigationDecision
	Cleared  bool // avoidance state was released this tick
}

// Arbitrate evaluates Behaviors in order against the pre-tick snapshot and
// applies the first decision. Vessels with avoidance switched off, or that are
// aground or disabled, are returned untouched.
//
// CollisionRisks are recomputed on every evaluated vessel. If no avoidance
// behavior wins but the vessel was avoiding on the previous tick, its
// avoidance state is cleared and any stored normal speed is demanded again.
func Arbitrate(v core.Vessel, snapshot []core.Vessel, land []geo.LandPolygon, p Params) Outcome {
	if !v.CollisionAvoidanceActive || v.Status.Terminal() {
		return Outcome{Vessel: v}
	}

	held := len(v.CollisionRisks) > 0 || v.AvoidingLand
	others := activeOthers(v.ID, snapshot)
	v.CollisionRisks = geo.CollisionRisks(v, others, p.Risk)

	s := Situation{Others: others, Land: land, Risks: v.CollisionRisks, Params: p}
	for _, b := range Behaviors {
		d, ok := b.Evaluate(v, s)
		if !ok {
			continue
		}
		out := Outcome{Behavior: b.Name, Decision: d}
		if held && !b.Avoidance {
			v = release(v)
			out.Cleared = true
		}
		out.Vessel = Apply(v, d, b.Name == GroundAvoidance)
		return out
	}

	if held {
		return Outcome{Vessel: release(v), Cleared: true}
	}
	return Outcome{Vessel: v}
}

// Apply folds a decision into v. Demanded speed is only ever lowered by a
// decision. When requested, the speed the vessel was heading for (its pending
// demand, or its current speed) is captured once as the normal speed.
func Apply(v core.Vessel, d core.NavigationDecision, avoidingLand bool) core.Vessel {
	if d.DemandedCourse != nil {
		v.DemandedCourse = core.Float(geo.NormalizeHeading(*d.DemandedCourse))
	}
	if d.StoreNormalSpeed && v.NormalSpeed == nil {
		if v.DemandedSpeed != nil {
			v.NormalSpeed = core.CopyFloat(v.DemandedSpeed)
		} else {
			v.NormalSpeed = core.Float(v.Speed)
		}
	}
	if d.DemandedSpeed != nil && (v.DemandedSpeed == nil || *d.DemandedSpeed < *v.DemandedSpeed) {
		v.DemandedSpeed = core.CopyFloat(d.DemandedSpeed)
	}
	v.AvoidingLand = avoidingLand
	reason := d.Reason
	v.AvoidanceReason = &reason
	return v
}

// release drops avoidance state and asks for the stored normal speed back.
func release(v core.Vessel) core.Vessel {
	v.CollisionRisks = nil
	v.AvoidingLand = false
	v.AvoidanceReason = nil
	if v.NormalSpeed != nil {
		v.DemandedSpeed = core.CopyFloat(v.NormalSpeed)
		v.NormalSpeed = nil
	}
	return v
}

func activeOthers(id string, snapshot []core.Vessel) []core.Vessel {
	out := make([]core.Vessel, 0, len(snapshot))
	for _, o := range snapshot {
		if o.ID == id || o.Status.Terminal() {
			continue
		}
		out = append(out, o)
	}
	return out
}
