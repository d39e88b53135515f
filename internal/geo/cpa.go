package geo

import (
	"math"

	"github.com/vesselsim/vesselsim/pkg/core"
)

// velocityNMPerMin returns the east/north velocity of v on the local plane.
func velocityNMPerMin(v core.Vessel) (vx, vy float64) {
	s := v.Speed / 60
	h := radians(v.Heading)
	return s * math.Sin(h), s * math.Cos(h)
}

// CPA predicts the closest point of approach of two vessels on straight tracks.
//
// Both tracks are projected on a flat-earth plane centred on v1. With relative
// position d and relative velocity v, the quadratic a·t² + b·t + c = 0 uses
// a = |v|², b = 2(d·v) and c = |d|² − r², where r is thresholdNM; it has real
// roots exactly when the tracks pass within r. The prediction is rejected for
// parallel tracks, for a closest approach in the past, or when the separation
// at t* = −b/2a exceeds thresholdNM. The returned point is the midpoint of the
// two projected positions at t*, with t* in minutes.
func CPA(v1, v2 core.Vessel, thresholdNM float64) (core.CollisionPoint, bool) {
	dx, dy := LocalXY(v1.Position, v2.Position)
	v1x, v1y := velocityNMPerMin(v1)
	v2x, v2y := velocityNMPerMin(v2)
	vx, vy := v2x-v1x, v2y-v1y

	a := vx*vx + vy*vy
	if math.Abs(a) < 1e-12 {
		return core.CollisionPoint{}, false
	}
	b := 2 * (dx*vx + dy*vy)
	c := dx*dx + dy*dy - thresholdNM*thresholdNM
	if b*b-4*a*c < 0 {
		return core.CollisionPoint{}, false
	}

	t := -b / (2 * a)
	if t < 0 {
		return core.CollisionPoint{}, false
	}
	if math.Hypot(dx+vx*t, dy+vy*t) > thresholdNM {
		return core.CollisionPoint{}, false
	}

	mx := (v1x*t + dx + v2x*t) / 2
	my := (v1y*t + dy + v2y*t) / 2
	p := FromLocalXY(v1.Position, mx, my)
	return core.CollisionPoint{Lat: p.Lat, Lon: p.Lon, TimeToCollision: t}, true
}
