package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/vesselsim/vesselsim/pkg/core"
)

// coneRays is the number of arc segments used to approximate a cone sector.
const coneRays = 20

// ErrDegeneratePolygon is returned for rings that do not enclose an area: fewer
// than three distinct vertices, self-intersecting or collinear rings.
var ErrDegeneratePolygon = errors.New("degenerate land polygon")

// LandPolygon is an immutable closed ring of land. Build it with NewLandPolygon.
type LandPolygon struct {
	ring    []core.Position // closed: first == last
	polygon geom.Polygon
}

// NewLandPolygon validates ring and closes it if the last vertex does not repeat the first.
func NewLandPolygon(ring []core.Position) (LandPolygon, error) {
	for i, p := range ring {
		if err := ValidatePosition(p); err != nil {
			return LandPolygon{}, fmt.Errorf("vertex %d: %w", i, err)
		}
	}

	closed := closeRing(ring)
	if distinctVertices(closed) < 3 {
		return LandPolygon{}, fmt.Errorf("%w: %d distinct vertices", ErrDegeneratePolygon, distinctVertices(closed))
	}

	flat := make([]float64, 0, len(closed)*2)
	for _, p := range closed {
		flat = append(flat, p.Lon, p.Lat)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return LandPolygon{}, fmt.Errorf("%w: %w", ErrDegeneratePolygon, err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ls})
	if err != nil {
		return LandPolygon{}, fmt.Errorf("%w: %w", ErrDegeneratePolygon, err)
	}
	if poly.Area() == 0 {
		return LandPolygon{}, fmt.Errorf("%w: zero area", ErrDegeneratePolygon)
	}

	return LandPolygon{ring: closed, polygon: poly}, nil
}

// MustLandPolygon is like NewLandPolygon but panics on invalid input.
// Intended for fixtures and tests.
func MustLandPolygon(ring []core.Position) LandPolygon {
	lp, err := NewLandPolygon(ring)
	if err != nil {
		panic(err)
	}
	return lp
}

// Ring returns a copy of the closed ring.
func (lp LandPolygon) Ring() []core.Position {
	return append([]core.Position(nil), lp.ring...)
}

// Contains reports whether p lies inside the polygon.
func (lp LandPolygon) Contains(p core.Position) bool {
	return InPolygon(p, lp.ring)
}

// ParseLandRings parses a JSON array of rings of [lon,lat] pairs into land polygons.
// Input format: "[[[lon1,lat1],[lon2,lat2],...], ...]"
func ParseLandRings(input []byte) ([]LandPolygon, error) {
	var rings [][][]float64
	if err := json.Unmarshal(input, &rings); err != nil {
		return nil, fmt.Errorf("failed to parse land rings JSON: %w", err)
	}

	out := make([]LandPolygon, 0, len(rings))
	for i, coords := range rings {
		ring := make([]core.Position, len(coords))
		for j, c := range coords {
			if len(c) < 2 {
				return nil, fmt.Errorf("ring %d coordinate %d has insufficient values", i, j)
			}
			ring[j] = core.Position{Lon: c[0], Lat: c[1]}
		}
		lp, err := NewLandPolygon(ring)
		if err != nil {
			return nil, fmt.Errorf("ring %d: %w", i, err)
		}
		out = append(out, lp)
	}
	return out, nil
}

// InPolygon reports whether p is inside ring using even-odd ray casting.
// The ring may be open or closed.
func InPolygon(p core.Position, ring []core.Position) bool {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	inside := false
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		if (a.Lat <= p.Lat && p.Lat < b.Lat) || (b.Lat <= p.Lat && p.Lat < a.Lat) {
			x := a.Lon + (p.Lat-a.Lat)*(b.Lon-a.Lon)/(b.Lat-a.Lat)
			if x > p.Lon {
				inside = !inside
			}
		}
	}
	return inside
}

// ConeIntersectsPolygon reports whether the cone at apex touches the land polygon.
// The cone is approximated by a sector polygon whose arc is sampled with coneRays rays.
func ConeIntersectsPolygon(apex core.Position, heading, radiusNM, halfAngleDeg float64, lp LandPolygon) bool {
	if lp.Contains(apex) {
		return true
	}
	return geom.Intersects(coneGeometry(apex, heading, radiusNM, halfAngleDeg), lp.polygon.AsGeometry())
}

// coneGeometry builds the sector as a polygon, or a line along the heading
// when the half angle is zero. The sector is simple for any half angle below
// 180 degrees, so constructor validation is skipped.
func coneGeometry(apex core.Position, heading, radiusNM, halfAngleDeg float64) geom.Geometry {
	if halfAngleDeg <= 0 {
		tip := Destination(apex, radiusNM, heading)
		seq := geom.NewSequence([]float64{apex.Lon, apex.Lat, tip.Lon, tip.Lat}, geom.DimXY)
		ls, _ := geom.NewLineString(seq, geom.DisableAllValidations)
		return ls.AsGeometry()
	}

	flat := make([]float64, 0, (coneRays+3)*2)
	flat = append(flat, apex.Lon, apex.Lat)
	step := 2 * halfAngleDeg / coneRays
	for i := 0; i <= coneRays; i++ {
		p := Destination(apex, radiusNM, heading-halfAngleDeg+float64(i)*step)
		flat = append(flat, p.Lon, p.Lat)
	}
	flat = append(flat, apex.Lon, apex.Lat)

	ls, _ := geom.NewLineString(geom.NewSequence(flat, geom.DimXY), geom.DisableAllValidations)
	poly, _ := geom.NewPolygon([]geom.LineString{ls}, geom.DisableAllValidations)
	return poly.AsGeometry()
}

func closeRing(ring []core.Position) []core.Position {
	out := append([]core.Position(nil), ring...)
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

func distinctVertices(ring []core.Position) int {
	seen := make(map[core.Position]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
	}
	return len(seen)
}
