package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMemory_ImplementsBackend(t *testing.T) {
	var _ Backend = NewMemory()
}

func TestMemory_RequiresRun(t *testing.T) {
	m := NewMemory()

	assert.ErrorIs(t, m.RecordFrame(0, t0, nil), ErrNoRun)
	assert.ErrorIs(t, m.RecordGrounding(&core.GroundingEvent{}), ErrNoRun)
	assert.ErrorIs(t, m.RecordCollision(&core.CollisionEvent{}), ErrNoRun)
	assert.ErrorIs(t, m.RecordDecision(0, &core.DecisionEvent{}), ErrNoRun)
	assert.ErrorIs(t, m.EndRun(), ErrNoRun)
}

func TestMemory_RecordsRun(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Init())
	require.NoError(t, m.StartRun(&core.Run{ID: "run-1", Name: "solent"}))

	a := core.Vessel{ID: "a", Position: core.Position{Lat: 50, Lon: -1}, Status: core.StatusUnderway}
	b := core.Vessel{ID: "b", Position: core.Position{Lat: 50.1, Lon: -1}, Status: core.StatusUnderway}
	require.NoError(t, m.RecordFrame(0, t0, []core.Vessel{b, a}))

	a.Position = geo.Destination(a.Position, 1, 90)
	b.Status = core.StatusAground
	require.NoError(t, m.RecordFrame(1, t0.Add(time.Minute), []core.Vessel{b, a}))

	require.NoError(t, m.RecordGrounding(&core.GroundingEvent{VesselID: "b", Tick: 1}))
	require.NoError(t, m.RecordCollision(&core.CollisionEvent{VesselA: "a", VesselB: "b"}))
	require.NoError(t, m.RecordDecision(1, &core.DecisionEvent{VesselID: "a", Behavior: "ground_avoidance"}))
	require.NoError(t, m.RecordDecision(2, &core.DecisionEvent{VesselID: "a", Behavior: "ground_avoidance"}))
	require.NoError(t, m.EndRun())
	require.NoError(t, m.Close())

	s := m.Summary()
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "solent", s.Name)
	assert.Equal(t, uint(2), s.Frames)
	assert.Equal(t, 2, s.Vessels)
	assert.Equal(t, map[core.Status]int{core.StatusUnderway: 1, core.StatusAground: 1}, s.ByStatus)
	assert.Equal(t, 1, s.Groundings)
	assert.Equal(t, 1, s.Collisions)
	assert.Equal(t, map[string]int{"ground_avoidance": 2}, s.Decisions)
	assert.InDelta(t, 1, s.Travelled["a"], 1e-6)
	assert.Zero(t, s.Travelled["b"])

	assert.Equal(t, []string{"a", "b"}, m.IDs())

	rec, ok := m.Vessel("a")
	require.True(t, ok)
	require.Len(t, rec.States, 2)
	assert.Equal(t, uint(1), rec.States[1].Tick)
	assert.Equal(t, t0.Add(time.Minute), rec.States[1].Time)
	assert.Equal(t, a.Position, rec.Vessel.Position)

	_, ok = m.Vessel("zzz")
	assert.False(t, ok)
}

func TestMemory_StoresMercator(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.StartRun(&core.Run{ID: "r"}))
	require.NoError(t, m.RecordFrame(0, t0, []core.Vessel{{ID: "a", Position: core.Position{Lat: 0, Lon: 0}}}))

	rec, ok := m.Vessel("a")
	require.True(t, ok)
	xy, ok := rec.States[0].Mercator.XY()
	require.True(t, ok)
	assert.InDelta(t, 0, xy.X, 1e-6)
	assert.InDelta(t, 0, xy.Y, 1e-6)
}

func TestMemory_TravelledFromRoster(t *testing.T) {
	origin := core.Position{Lat: 50, Lon: -1}
	a := core.Vessel{ID: "a", Position: origin, Status: core.StatusUnderway}

	m := NewMemory()
	require.NoError(t, m.StartRun(&core.Run{ID: "r", Roster: []core.Vessel{a}}))

	a.Position = geo.Destination(origin, 0.5, 90)
	require.NoError(t, m.RecordFrame(0, t0, []core.Vessel{a}))
	a.Position = geo.Destination(a.Position, 0.5, 90)
	require.NoError(t, m.RecordFrame(1, t0.Add(time.Minute), []core.Vessel{a}))

	s := m.Summary()
	assert.InDelta(t, 1, s.Travelled["a"], 1e-6)

	// a later run without a roster does not reuse the old origins
	require.NoError(t, m.StartRun(&core.Run{ID: "r2"}))
	require.NoError(t, m.RecordFrame(0, t0, []core.Vessel{a}))
	assert.Zero(t, m.Summary().Travelled["a"])
}

func TestMemory_StartRunResets(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.StartRun(&core.Run{ID: "first"}))
	require.NoError(t, m.RecordFrame(0, t0, []core.Vessel{{ID: "a"}}))

	require.NoError(t, m.StartRun(&core.Run{ID: "second"}))
	s := m.Summary()
	assert.Equal(t, "second", s.RunID)
	assert.Zero(t, s.Frames)
	assert.Zero(t, s.Vessels)
}

func TestMemory_VesselIsACopy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.StartRun(&core.Run{ID: "r"}))
	require.NoError(t, m.RecordFrame(0, t0, []core.Vessel{{ID: "a"}}))

	rec, _ := m.Vessel("a")
	rec.States[0].Heading = 123
	rec.Vessel.Heading = 123

	again, _ := m.Vessel("a")
	assert.Zero(t, again.States[0].Heading)
	assert.Zero(t, again.Vessel.Heading)
}
