// Package avoidance holds the navigation behaviors that propose course and
// speed changes, and the arbiter that applies the winning proposal.
package avoidance

import (
	"fmt"

	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

// Behavior names, also used as metric attributes and log fields.
const (
	GroundAvoidance        = "ground_avoidance"
	ShipCollisionAvoidance = "ship_collision_avoidance"
	ReturnToSpawn          = "return_to_spawn"
)

// Params configures every behavior.
type Params struct {
	ShipCone             geo.Cone
	LandCone             geo.Cone
	Risk                 geo.RiskParams
	SpeedReductionFactor float64

	SpawnPoint             core.Position
	MaxDistanceFromSpawnNM float64 // zero disables ReturnToSpawn
}

// Situation is what a behavior sees of the world around one vessel.
// Others holds only active vessels from the pre-tick snapshot.
type Situation struct {
	Others []core.Vessel
	Land   []geo.LandPolygon
	Risks  []core.CollisionRisk
	Params Params
}

// Behavior pairs a name with a pure evaluation. Evaluate returns false to abstain.
type Behavior struct {
	Name      string
	Avoidance bool // holds avoidance state (normal speed, risks, land flag) while winning
	Evaluate  func(v core.Vessel, s Situation) (core.NavigationDecision, bool)
}

// Behaviors is the fixed evaluation order; earlier entries win.
var Behaviors = []Behavior{
	{Name: GroundAvoidance, Avoidance: true, Evaluate: evaluateGround},
	{Name: ShipCollisionAvoidance, Avoidance: true, Evaluate: evaluateShips},
	{Name: ReturnToSpawn, Evaluate: evaluateSpawn},
}

func (s Situation) clearance() geo.Clearance {
	return geo.Clearance{Ship: s.Params.ShipCone, Land: s.Params.LandCone}
}

func evaluateGround(v core.Vessel, s Situation) (core.NavigationDecision, bool) {
	blocked := false
	for _, lp := range s.Land {
		if s.Params.LandCone.Intersects(v.Position, v.Heading, lp) {
			blocked = true
			break
		}
	}
	if !blocked {
		return core.NavigationDecision{}, false
	}
	return propose(v, s, s.Land, "land ahead"), true
}

func evaluateShips(v core.Vessel, s Situation) (core.NavigationDecision, bool) {
	if len(s.Risks) == 0 {
		return core.NavigationDecision{}, false
	}
	return propose(v, s, nil, fmt.Sprintf("%d vessel(s) closing", len(s.Risks))), true
}

// propose slows the vessel and, if one exists, steers it onto the first clear heading.
func propose(v core.Vessel, s Situation, land []geo.LandPolygon, cause string) core.NavigationDecision {
	base := v.Speed
	if v.NormalSpeed != nil {
		base = *v.NormalSpeed
	}

	d := core.NavigationDecision{
		DemandedSpeed:    core.Float(base * s.Params.SpeedReductionFactor),
		StoreNormalSpeed: v.NormalSpeed == nil,
	}
	if h, ok := geo.ClearHeading(v, s.Risks, land, s.clearance()); ok {
		d.DemandedCourse = &h
		d.Reason = fmt.Sprintf("%s, altering to %03.0f", cause, h)
	} else {
		d.Reason = fmt.Sprintf("%s, no clear heading, slowing", cause)
	}
	return d
}

func evaluateSpawn(v core.Vessel, s Situation) (core.NavigationDecision, bool) {
	p := s.Params
	if p.MaxDistanceFromSpawnNM <= 0 || v.Status != core.StatusUnderway {
		return core.NavigationDecision{}, false
	}
	dist := geo.PlanarDistance(v.Position, p.SpawnPoint)
	if dist <= p.MaxDistanceFromSpawnNM {
		return core.NavigationDecision{}, false
	}
	course := geo.Bearing(v.Position, p.SpawnPoint)
	return core.NavigationDecision{
		DemandedCourse: &course,
		Reason:         fmt.Sprintf("%.1f NM from spawn, returning on %03.0f", dist, course),
	}, true
}
