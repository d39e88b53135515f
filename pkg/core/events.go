// pkg/core/events.go
package core

import "time"

// GroundingEvent records a vessel running aground.
type GroundingEvent struct {
	VesselID string
	Time     time.Time
	Tick     uint
	Position Position
}

// CollisionEvent records contact between two vessels and which of them were disabled.
type CollisionEvent struct {
	Time       time.Time
	Tick       uint
	VesselA    string
	VesselB    string
	Separation float64 // NM
	Disabled   []string
}

// DecisionEvent records the behavior that won arbitration for a vessel in a tick.
type DecisionEvent struct {
	VesselID string
	Behavior string
	Reason   string
}
