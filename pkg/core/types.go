// pkg/core/types.go
package core

// Position is a geographic coordinate in decimal degrees (WGS84).
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Dimensions of a hull, in metres.
type Dimensions struct {
	Length float64 `json:"length"`
	Beam   float64 `json:"beam"`
	Draft  float64 `json:"draft"`
}

// Status is the navigational status of a vessel.
type Status string

const (
	StatusUnderway Status = "underway"
	StatusAnchored Status = "anchored"
	StatusMoored   Status = "moored"
	StatusAground  Status = "aground"
	StatusDisabled Status = "disabled"
)

// Terminal reports whether the status freezes the vessel for the rest of the run.
// Aground and disabled vessels never move, never run avoidance and are not
// considered as collision participants.
func (s Status) Terminal() bool {
	return s == StatusAground || s == StatusDisabled
}

// CollisionPoint is the predicted point of closest approach between two vessels.
type CollisionPoint struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	TimeToCollision float64 `json:"timeToCollision"` // minutes
}

// CollisionRisk describes one closing vessel as seen from the own ship.
type CollisionRisk struct {
	OtherVesselID  string          `json:"otherVesselId"`
	Bearing        float64         `json:"bearing"`
	Distance       float64         `json:"distance"`      // NM
	RelativeSpeed  float64         `json:"relativeSpeed"` // knots, negative when closing
	CollisionPoint *CollisionPoint `json:"collisionPoint,omitempty"`
}

// NavigationDecision is what a behavior proposes for a vessel. Nil fields are
// left unchanged when the decision is applied.
type NavigationDecision struct {
	DemandedCourse   *float64
	DemandedSpeed    *float64
	StoreNormalSpeed bool
	Reason           string
}
