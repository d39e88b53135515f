package geo

import "github.com/vesselsim/vesselsim/pkg/core"

// coneTolerance keeps points that sit exactly on the cone boundary inside it
// despite floating point round-off in the spherical formulas.
const coneTolerance = 1e-9

// Cone is a forward-looking circular sector used for hazard lookahead.
type Cone struct {
	RadiusNM     float64
	HalfAngleDeg float64
}

// InCone reports whether point lies within radiusNM of apex and within
// halfAngleDeg either side of heading. Both boundaries are inclusive.
func InCone(apex core.Position, heading, radiusNM, halfAngleDeg float64, point core.Position) bool {
	if Distance(apex, point) > radiusNM+coneTolerance {
		return false
	}
	if apex == point {
		return true
	}
	return HeadingDifference(Bearing(apex, point), heading) <= halfAngleDeg+coneTolerance
}

// Contains is InCone with the receiver's dimensions.
func (c Cone) Contains(apex core.Position, heading float64, point core.Position) bool {
	return InCone(apex, heading, c.RadiusNM, c.HalfAngleDeg, point)
}

// Intersects is ConeIntersectsPolygon with the receiver's dimensions.
func (c Cone) Intersects(apex core.Position, heading float64, lp LandPolygon) bool {
	return ConeIntersectsPolygon(apex, heading, c.RadiusNM, c.HalfAngleDeg, lp)
}
