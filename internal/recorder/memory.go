package recorder

import (
	"errors"
	"sort"
	"sync"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("no run started")

// VesselState is one recorded frame of a vessel.
type VesselState struct {
	Tick         uint
	Time         time.Time
	Position     core.Position
	Mercator     geom.Point // EPSG:3857, for map consumers
	Heading      float64
	Speed        float64
	Status       core.Status
	AvoidingLand bool
	Risks        int
}

// VesselRecord groups a vessel with all its time-series data
type VesselRecord struct {
	Vessel core.Vessel // latest state
	States []VesselState
}

// TickDecision is a decision tagged with the tick it was made in.
type TickDecision struct {
	Tick uint
	core.DecisionEvent
}

// Memory keeps a run in memory.
type Memory struct {
	run *core.Run

	vessels map[string]*VesselRecord // keyed by vessel ID
	order   []string                 // first-seen order
	origins map[string]core.Position // roster positions at StartRun

	groundings []core.GroundingEvent
	collisions []core.CollisionEvent
	decisions  []TickDecision
	frames     uint

	mu sync.RWMutex
}

// NewMemory creates a new memory recorder
func NewMemory() *Memory {
	return &Memory{
		vessels: make(map[string]*VesselRecord),
	}
}

// Init initializes the backend
func (m *Memory) Init() error {
	return nil
}

// Close cleans up resources
func (m *Memory) Close() error {
	return nil
}

// StartRun begins recording a new run, dropping anything recorded before.
func (m *Memory) StartRun(run *core.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.run = run
	m.origins = make(map[string]core.Position, len(run.Roster))
	for _, v := range run.Roster {
		m.origins[v.ID] = v.Position
	}
	m.vessels = make(map[string]*VesselRecord)
	m.order = nil
	m.groundings = nil
	m.collisions = nil
	m.decisions = nil
	m.frames = 0
	return nil
}

// EndRun finalizes the run. The data stays available for Summary.
func (m *Memory) EndRun() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run == nil {
		return ErrNoRun
	}
	return nil
}

// RecordFrame stores the state of every vessel after a tick.
func (m *Memory) RecordFrame(tick uint, at time.Time, vessels []core.Vessel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run == nil {
		return ErrNoRun
	}

	for _, v := range vessels {
		rec, ok := m.vessels[v.ID]
		if !ok {
			rec = &VesselRecord{}
			m.vessels[v.ID] = rec
			m.order = append(m.order, v.ID)
		}
		rec.Vessel = v.Clone()
		// left empty when the position has no finite projection
		merc, _ := geo.Coords3857From4326(v.Position)
		rec.States = append(rec.States, VesselState{
			Tick:         tick,
			Time:         at,
			Position:     v.Position,
			Mercator:     merc,
			Heading:      v.Heading,
			Speed:        v.Speed,
			Status:       v.Status,
			AvoidingLand: v.AvoidingLand,
			Risks:        len(v.CollisionRisks),
		})
	}
	m.frames++
	return nil
}

// RecordGrounding records a vessel running aground
func (m *Memory) RecordGrounding(e *core.GroundingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run == nil {
		return ErrNoRun
	}
	m.groundings = append(m.groundings, *e)
	return nil
}

// RecordCollision records a ship-ship contact
func (m *Memory) RecordCollision(e *core.CollisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run == nil {
		return ErrNoRun
	}
	m.collisions = append(m.collisions, *e)
	return nil
}

// RecordDecision records the behavior that won arbitration for a vessel
func (m *Memory) RecordDecision(tick uint, e *core.DecisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run == nil {
		return ErrNoRun
	}
	m.decisions = append(m.decisions, TickDecision{Tick: tick, DecisionEvent: *e})
	return nil
}

// Vessel returns the record for one vessel.
func (m *Memory) Vessel(id string) (VesselRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.vessels[id]
	if !ok {
		return VesselRecord{}, false
	}
	return VesselRecord{Vessel: rec.Vessel.Clone(), States: append([]VesselState(nil), rec.States...)}, true
}

// Summary condenses a run.
type Summary struct {
	RunID      string              `json:"runId"`
	Name       string              `json:"name"`
	Frames     uint                `json:"frames"`
	Vessels    int                 `json:"vessels"`
	ByStatus   map[core.Status]int `json:"byStatus"`
	Groundings int                 `json:"groundings"`
	Collisions int                 `json:"collisions"`
	Decisions  map[string]int      `json:"decisions"` // by behavior
	Travelled  map[string]float64  `json:"travelledNM"`
}

// Summary returns counts and distances for the recorded run. Distance is
// measured from the roster position when the run carried one, so the first
// tick is counted.
func (m *Memory) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{
		Frames:     m.frames,
		Vessels:    len(m.vessels),
		ByStatus:   make(map[core.Status]int),
		Groundings: len(m.groundings),
		Collisions: len(m.collisions),
		Decisions:  make(map[string]int),
		Travelled:  make(map[string]float64, len(m.vessels)),
	}
	if m.run != nil {
		s.RunID = m.run.ID
		s.Name = m.run.Name
	}

	for _, id := range m.order {
		rec := m.vessels[id]
		s.ByStatus[rec.Vessel.Status]++
		var d float64
		if origin, ok := m.origins[id]; ok && len(rec.States) > 0 {
			d = geo.Distance(origin, rec.States[0].Position)
		}
		for i := 1; i < len(rec.States); i++ {
			d += geo.Distance(rec.States[i-1].Position, rec.States[i].Position)
		}
		s.Travelled[id] = d
	}
	for _, d := range m.decisions {
		s.Decisions[d.Behavior]++
	}
	return s
}

// IDs returns the recorded vessel IDs, sorted.
func (m *Memory) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := append([]string(nil), m.order...)
	sort.Strings(ids)
	return ids
}
