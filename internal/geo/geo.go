package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/vesselsim/vesselsim/pkg/core"
	"github.com/wroge/wgs84"
)

// GEO MATH
// Positions are WGS84 lat/lon in degrees. Distances are nautical miles, bearings are
// degrees true, 0 = north, clockwise.

// EarthRadiusNM is the mean Earth radius used by every spherical formula here.
const EarthRadiusNM = 3440.065

// NMPerDegreeLat is the length of one degree of latitude on the sphere.
const NMPerDegreeLat = EarthRadiusNM * math.Pi / 180

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range or not finite.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }

// ValidatePosition checks that p is a finite lat/lon within range.
func ValidatePosition(p core.Position) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return ErrInvalidCoordinates
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Destination returns the point reached by travelling distanceNM along the
// great circle that leaves from at the given initial bearing.
func Destination(from core.Position, distanceNM, bearingDeg float64) core.Position {
	lat1, lon1 := radians(from.Lat), radians(from.Lon)
	brg := radians(bearingDeg)
	ad := distanceNM / EarthRadiusNM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ad) + math.Cos(lat1)*math.Sin(ad)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(
		math.Sin(brg)*math.Sin(ad)*math.Cos(lat1),
		math.Cos(ad)-math.Sin(lat1)*math.Sin(lat2),
	)

	return core.Position{Lat: degrees(lat2), Lon: normalizeLon(degrees(lon2))}
}

// Distance returns the haversine great-circle distance between a and b.
func Distance(a, b core.Position) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dlat := lat2 - lat1
	dlon := radians(b.Lon - a.Lon)

	x := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))
	return EarthRadiusNM * c
}

// Bearing returns the initial great-circle bearing from a to b in [0,360).
func Bearing(a, b core.Position) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dlon := radians(b.Lon - a.Lon)

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)
	return NormalizeHeading(degrees(math.Atan2(y, x)))
}

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

// HeadingDifference returns the minimum angle between two headings, in [0,180].
func HeadingDifference(a, b float64) float64 {
	d := math.Abs(NormalizeHeading(a) - NormalizeHeading(b))
	return math.Min(d, 360-d)
}

// SignedTurn returns the shortest turn from cur to target in (-180,180].
// Positive turns are to starboard.
func SignedTurn(cur, target float64) float64 {
	d := NormalizeHeading(target - cur)
	if d > 180 {
		d -= 360
	}
	return d
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

// LocalXY projects p onto a flat-earth tangent plane at origin, returning
// east and north offsets in nautical miles.
func LocalXY(origin, p core.Position) (x, y float64) {
	x = normalizeLon(p.Lon-origin.Lon) * NMPerDegreeLat * math.Cos(radians(origin.Lat))
	y = (p.Lat - origin.Lat) * NMPerDegreeLat
	return x, y
}

// FromLocalXY is the inverse of LocalXY.
func FromLocalXY(origin core.Position, x, y float64) core.Position {
	lat := origin.Lat + y/NMPerDegreeLat
	cosLat := math.Cos(radians(origin.Lat))
	if cosLat < 1e-12 {
		return core.Position{Lat: lat, Lon: origin.Lon}
	}
	return core.Position{Lat: lat, Lon: normalizeLon(origin.Lon + x/(NMPerDegreeLat*cosLat))}
}

// PlanarDistance returns the separation of a and b on the tangent plane at a.
// It is the cheap distance used for contact and spawn-radius checks.
func PlanarDistance(a, b core.Position) float64 {
	x, y := LocalXY(a, b)
	return math.Hypot(x, y)
}

// Coords3857From4326 converts a WGS84 position to a Web Mercator point for map consumers.
func Coords3857From4326(p core.Position) (geom.Point, error) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(p.Lon, p.Lat, 0)
	pt, err := geom.XY{X: x, Y: y}.AsPoint()
	if err != nil {
		return geom.Point{}, fmt.Errorf("projecting %v: %w", p, err)
	}
	return pt, nil
}
