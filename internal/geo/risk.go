package geo

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/vesselsim/vesselsim/pkg/core"
)

// headingSearchStep is the increment used by ClearHeading, in degrees.
const headingSearchStep = 10

// RiskParams bounds which vessels count as collision risks.
type RiskParams struct {
	DistanceNM     float64 // only vessels closer than this are considered
	CPAThresholdNM float64 // separation below which a CPA is reported
}

// CollisionRisks returns the vessels in others that are ahead of self (within
// 90° of its heading), closer than DistanceNM and closing, nearest first.
// self is skipped if it appears in others.
func CollisionRisks(self core.Vessel, others []core.Vessel, params RiskParams) []core.CollisionRisk {
	var risks []core.CollisionRisk
	for _, o := range others {
		if o.ID == self.ID {
			continue
		}
		dist := Distance(self.Position, o.Position)
		if dist >= params.DistanceNM {
			continue
		}
		brg := Bearing(self.Position, o.Position)
		if HeadingDifference(brg, self.Heading) > 90 {
			continue
		}

		// Range rate along the line of sight; negative when closing.
		rel := o.Speed*math.Cos(radians(brg-o.Heading)) - self.Speed*math.Cos(radians(brg-self.Heading))
		if rel >= 0 {
			continue
		}

		risk := core.CollisionRisk{
			OtherVesselID: o.ID,
			Bearing:       brg,
			Distance:      dist,
			RelativeSpeed: rel,
		}
		if cp, ok := CPA(self, o, params.CPAThresholdNM); ok {
			risk.CollisionPoint = &cp
		}
		risks = append(risks, risk)
	}

	slices.SortFunc(risks, func(a, b core.CollisionRisk) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return strings.Compare(a.OtherVesselID, b.OtherVesselID)
	})
	return risks
}

// Clearance holds the cones ClearHeading tests against.
type Clearance struct {
	Ship Cone // closing vessels and their predicted collision points
	Land Cone // land polygons
}

// ClearHeading returns the first heading whose cones are free of the given
// risks and land. The current heading is tried first, then starboard turns in
// 10° steps up to 180°, then port turns. ok is false if every heading is blocked.
func ClearHeading(self core.Vessel, risks []core.CollisionRisk, land []LandPolygon, c Clearance) (heading float64, ok bool) {
	hazards := make([]core.Position, 0, len(risks)*2)
	for _, r := range risks {
		hazards = append(hazards, Destination(self.Position, r.Distance, r.Bearing))
		if r.CollisionPoint != nil {
			hazards = append(hazards, core.Position{Lat: r.CollisionPoint.Lat, Lon: r.CollisionPoint.Lon})
		}
	}

	clear := func(h float64) bool {
		for _, p := range hazards {
			if c.Ship.Contains(self.Position, h, p) {
				return false
			}
		}
		for _, lp := range land {
			if c.Land.Intersects(self.Position, h, lp) {
				return false
			}
		}
		return true
	}

	if clear(self.Heading) {
		return NormalizeHeading(self.Heading), true
	}
	for _, sign := range []float64{1, -1} {
		for off := headingSearchStep; off <= 180; off += headingSearchStep {
			h := NormalizeHeading(self.Heading + sign*float64(off))
			if clear(h) {
				return h, true
			}
		}
	}
	return 0, false
}
