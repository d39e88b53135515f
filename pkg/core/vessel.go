// pkg/core/vessel.go
package core

import "time"

// Vessel is the simulated state of one ship.
// ID is assigned by the roster owner and is stable across ticks.
type Vessel struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Heading  float64  `json:"heading"`  // degrees, [0,360)
	TurnRate float64  `json:"turnRate"` // degrees per minute, positive to starboard
	Speed    float64  `json:"speed"`    // knots

	DemandedCourse *float64 `json:"demandedCourse,omitempty"`
	DemandedSpeed  *float64 `json:"demandedSpeed,omitempty"`
	NormalSpeed    *float64 `json:"normalSpeed,omitempty"` // speed before avoidance slowed the vessel

	Dimensions Dimensions `json:"dimensions"`
	Status     Status     `json:"status"`

	CollisionAvoidanceActive bool            `json:"collisionAvoidanceActive"`
	CollisionRisks           []CollisionRisk `json:"collisionRisks,omitempty"`
	AvoidingLand             bool            `json:"avoidingLand"`
	AvoidanceReason          *string         `json:"avoidanceReason,omitempty"`

	Trail []TrailEntry `json:"trail,omitempty"` // oldest first
}

// TrailEntry is a snapshot of a vessel taken at the start of a tick.
type TrailEntry struct {
	Time           time.Time `json:"time"`
	Position       Position  `json:"position"`
	Heading        float64   `json:"heading"`
	Speed          float64   `json:"speed"`
	DemandedCourse *float64  `json:"demandedCourse,omitempty"`
	DemandedSpeed  *float64  `json:"demandedSpeed,omitempty"`
	Status         Status    `json:"status"`
	AvoidingLand   bool      `json:"avoidingLand"`
}

// Active reports whether the vessel takes part in avoidance and collision checks.
func (v *Vessel) Active() bool {
	return !v.Status.Terminal()
}

// Snapshot captures the trail entry for the vessel's current state.
func (v *Vessel) Snapshot(at time.Time) TrailEntry {
	return TrailEntry{
		Time:           at,
		Position:       v.Position,
		Heading:        v.Heading,
		Speed:          v.Speed,
		DemandedCourse: CopyFloat(v.DemandedCourse),
		DemandedSpeed:  CopyFloat(v.DemandedSpeed),
		Status:         v.Status,
		AvoidingLand:   v.AvoidingLand,
	}
}

// TrimTrail drops the oldest trail entries until at most max remain.
func (v *Vessel) TrimTrail(max int) {
	if max < 0 {
		max = 0
	}
	if n := len(v.Trail); n > max {
		v.Trail = append(v.Trail[:0:0], v.Trail[n-max:]...)
	}
}

// Clone returns a deep copy so that a tick never aliases the caller's roster.
func (v Vessel) Clone() Vessel {
	c := v
	c.DemandedCourse = CopyFloat(v.DemandedCourse)
	c.DemandedSpeed = CopyFloat(v.DemandedSpeed)
	c.NormalSpeed = CopyFloat(v.NormalSpeed)
	if v.AvoidanceReason != nil {
		r := *v.AvoidanceReason
		c.AvoidanceReason = &r
	}
	if v.CollisionRisks != nil {
		c.CollisionRisks = make([]CollisionRisk, len(v.CollisionRisks))
		for i, r := range v.CollisionRisks {
			if r.CollisionPoint != nil {
				cp := *r.CollisionPoint
				r.CollisionPoint = &cp
			}
			c.CollisionRisks[i] = r
		}
	}
	if v.Trail != nil {
		c.Trail = append([]TrailEntry(nil), v.Trail...)
	}
	return c
}

// CopyFloat returns a pointer to a copy of *f, or nil.
func CopyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}
