// Package scenario loads and generates the inputs of a run: the vessel roster
// and the land polygons.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

var (
	// ErrEmptyRoster is returned for a scenario without vessels.
	ErrEmptyRoster = errors.New("scenario has no vessels")
	// ErrDuplicateVessel is returned when two vessels share an ID.
	ErrDuplicateVessel = errors.New("duplicate vessel id")
	// ErrInvalidVessel is returned for vessels violating kinematic bounds.
	ErrInvalidVessel = errors.New("invalid vessel")
)

// Scenario is a roster plus the land it sails around.
type Scenario struct {
	Name    string
	Vessels []core.Vessel
	Land    []geo.LandPolygon
}

type file struct {
	Name    string          `json:"name"`
	Vessels []core.Vessel   `json:"vessels"`
	Land    json.RawMessage `json:"land"`
}

// Load reads a scenario JSON file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
// Land is an array of rings of [lon,lat] pairs.
func Parse(data []byte) (Scenario, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}

	var land []geo.LandPolygon
	if len(f.Land) > 0 && string(f.Land) != "null" {
		var err error
		land, err = geo.ParseLandRings(f.Land)
		if err != nil {
			return Scenario{}, err
		}
	}

	vessels, err := Normalize(f.Vessels)
	if err != nil {
		return Scenario{}, err
	}
	return Scenario{Name: f.Name, Vessels: vessels, Land: land}, nil
}

// Normalize validates a roster and fills in defaults: missing status becomes
// underway and headings are reduced to [0,360).
func Normalize(vessels []core.Vessel) ([]core.Vessel, error) {
	if len(vessels) == 0 {
		return nil, ErrEmptyRoster
	}

	out := make([]core.Vessel, len(vessels))
	seen := make(map[string]struct{}, len(vessels))
	for i, v := range vessels {
		if v.ID == "" {
			return nil, fmt.Errorf("%w: vessel %d has no id", ErrInvalidVessel, i)
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVessel, v.ID)
		}
		seen[v.ID] = struct{}{}

		if err := geo.ValidatePosition(v.Position); err != nil {
			return nil, fmt.Errorf("vessel %s: %w", v.ID, err)
		}
		if v.Speed < 0 || math.IsNaN(v.Speed) {
			return nil, fmt.Errorf("%w: vessel %s speed %v", ErrInvalidVessel, v.ID, v.Speed)
		}
		if math.Abs(v.TurnRate) > 3 {
			return nil, fmt.Errorf("%w: vessel %s turn rate %v", ErrInvalidVessel, v.ID, v.TurnRate)
		}
		if v.Status == "" {
			v.Status = core.StatusUnderway
		}
		v.Heading = geo.NormalizeHeading(v.Heading)
		out[i] = v.Clone()
	}
	return out, nil
}

// Generate builds n underway vessels scattered within radiusNM of centre.
// The same seed always produces the same fleet.
func Generate(centre core.Position, radiusNM float64, n int, seed int64) []core.Vessel {
	rng := rand.New(rand.NewSource(seed))

	vessels := make([]core.Vessel, 0, n)
	for i := 0; i < n; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.New()
		}
		pos := geo.Destination(centre, radiusNM*math.Sqrt(rng.Float64()), rng.Float64()*360)
		length := 40 + rng.Float64()*260

		vessels = append(vessels, core.Vessel{
			ID:       id.String(),
			Position: pos,
			Heading:  math.Round(rng.Float64() * 359),
			Speed:    math.Round(6 + rng.Float64()*14),
			Dimensions: core.Dimensions{
				Length: math.Round(length),
				Beam:   math.Round(length / 6),
				Draft:  math.Round(length/25*10) / 10,
			},
			Status:                   core.StatusUnderway,
			CollisionAvoidanceActive: true,
		})
	}
	return vessels
}
