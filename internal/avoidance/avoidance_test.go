package avoidance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/pkg/core"
)

var (
	solent = core.Position{Lat: 50.05, Lon: -1.0}
	spawn  = core.Position{Lat: 50.3, Lon: -1.4}

	// Land 3 NM north of solent.
	island = geo.MustLandPolygon([]core.Position{
		{Lat: 50.1, Lon: -1.05},
		{Lat: 50.1, Lon: -0.95},
		{Lat: 50.2, Lon: -0.95},
		{Lat: 50.2, Lon: -1.05},
	})
)

func testParams() Params {
	return Params{
		ShipCone:             geo.Cone{RadiusNM: 2, HalfAngleDeg: 15},
		LandCone:             geo.Cone{RadiusNM: 4, HalfAngleDeg: 15},
		Risk:                 geo.RiskParams{DistanceNM: 4, CPAThresholdNM: 0.5},
		SpeedReductionFactor: 0.67,
		SpawnPoint:           spawn,
	}
}

func vessel(id string, pos core.Position, heading, speed float64) core.Vessel {
	return core.Vessel{
		ID:                       id,
		Position:                 pos,
		Heading:                  heading,
		Speed:                    speed,
		Dimensions:               core.Dimensions{Length: 100},
		Status:                   core.StatusUnderway,
		CollisionAvoidanceActive: true,
	}
}

// headOn returns two vessels 3 NM apart on reciprocal courses.
func headOn() (core.Vessel, core.Vessel) {
	return vessel("a", solent, 0, 10), vessel("b", geo.Destination(solent, 3, 0), 180, 10)
}

func TestBehaviors_Order(t *testing.T) {
	var names []string
	for _, b := range Behaviors {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{GroundAvoidance, ShipCollisionAvoidance, ReturnToSpawn}, names)
}

func TestArbitrate_LandAhead(t *testing.T) {
	v := vessel("a", solent, 0, 10)

	out := Arbitrate(v, []core.Vessel{v}, []geo.LandPolygon{island}, testParams())

	assert.Equal(t, GroundAvoidance, out.Behavior)
	assert.True(t, out.Vessel.AvoidingLand)
	require.NotNil(t, out.Vessel.DemandedCourse)
	assert.NotEqual(t, v.Heading, *out.Vessel.DemandedCourse)
	assert.False(t, testParams().LandCone.Intersects(solent, *out.Vessel.DemandedCourse, island))
	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.InDelta(t, 6.7, *out.Vessel.DemandedSpeed, 1e-9)
	require.NotNil(t, out.Vessel.NormalSpeed)
	assert.Equal(t, 10.0, *out.Vessel.NormalSpeed)
	require.NotNil(t, out.Vessel.AvoidanceReason)
	assert.Contains(t, *out.Vessel.AvoidanceReason, "land ahead")
	assert.False(t, out.Cleared)
}

func TestArbitrate_HeadOn(t *testing.T) {
	a, b := headOn()
	snapshot := []core.Vessel{a, b}

	tests := []struct {
		name   string
		self   core.Vessel
		course float64
	}{
		{"northbound", a, 20},
		{"southbound", b, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Arbitrate(tt.self, snapshot, nil, testParams())

			assert.Equal(t, ShipCollisionAvoidance, out.Behavior)
			require.Len(t, out.Vessel.CollisionRisks, 1)
			assert.Negative(t, out.Vessel.CollisionRisks[0].RelativeSpeed)
			require.NotNil(t, out.Vessel.DemandedCourse)
			assert.InDelta(t, tt.course, *out.Vessel.DemandedCourse, 1e-9)
			require.NotNil(t, out.Vessel.DemandedSpeed)
			assert.Less(t, *out.Vessel.DemandedSpeed, tt.self.Speed)
			assert.False(t, out.Vessel.AvoidingLand)
		})
	}
}

func TestArbitrate_ReturnToSpawn(t *testing.T) {
	p := testParams()
	p.MaxDistanceFromSpawnNM = 50
	pos := geo.Destination(spawn, 70, 135)
	v := vessel("a", pos, 90, 10)

	out := Arbitrate(v, []core.Vessel{v}, nil, p)

	assert.Equal(t, ReturnToSpawn, out.Behavior)
	require.NotNil(t, out.Vessel.DemandedCourse)
	assert.InDelta(t, geo.Bearing(pos, spawn), *out.Vessel.DemandedCourse, 1e-9)
	assert.Nil(t, out.Vessel.DemandedSpeed)
	assert.Nil(t, out.Vessel.NormalSpeed)
	assert.False(t, out.Vessel.AvoidingLand)
}

func TestArbitrate_ReturnToSpawnOnlyWhenUnderway(t *testing.T) {
	p := testParams()
	p.MaxDistanceFromSpawnNM = 50
	v := vessel("a", geo.Destination(spawn, 70, 135), 90, 0)
	v.Status = core.StatusAnchored

	out := Arbitrate(v, []core.Vessel{v}, nil, p)
	assert.Empty(t, out.Behavior)
	assert.Nil(t, out.Vessel.DemandedCourse)
}

func TestArbitrate_Priority(t *testing.T) {
	a, b := headOn()
	p := testParams()
	p.MaxDistanceFromSpawnNM = 1 // spawn is far away for everyone

	t.Run("ground beats ships", func(t *testing.T) {
		out := Arbitrate(a, []core.Vessel{a, b}, []geo.LandPolygon{island}, p)
		assert.Equal(t, GroundAvoidance, out.Behavior)
		assert.True(t, out.Vessel.AvoidingLand)
		assert.Len(t, out.Vessel.CollisionRisks, 1, "risks are still recorded")
	})

	t.Run("ships beat spawn", func(t *testing.T) {
		out := Arbitrate(a, []core.Vessel{a, b}, nil, p)
		assert.Equal(t, ShipCollisionAvoidance, out.Behavior)
	})

	t.Run("spawn when nothing else", func(t *testing.T) {
		out := Arbitrate(a, []core.Vessel{a}, nil, p)
		assert.Equal(t, ReturnToSpawn, out.Behavior)
	})
}

func TestArbitrate_NoClearHeadingOnlySlows(t *testing.T) {
	v := vessel("a", core.Position{Lat: 50.15, Lon: -1.0}, 0, 10)

	out := Arbitrate(v, []core.Vessel{v}, []geo.LandPolygon{island}, testParams())

	assert.Equal(t, GroundAvoidance, out.Behavior)
	assert.Nil(t, out.Vessel.DemandedCourse)
	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.InDelta(t, 6.7, *out.Vessel.DemandedSpeed, 1e-9)
	assert.Contains(t, *out.Vessel.AvoidanceReason, "no clear heading")
}

func TestArbitrate_BaseSpeedIsNormalSpeed(t *testing.T) {
	a, b := headOn()
	a.Speed = 8
	a.NormalSpeed = core.Float(10)
	a.CollisionRisks = []core.CollisionRisk{{OtherVesselID: "b"}}

	out := Arbitrate(a, []core.Vessel{a, b}, nil, testParams())

	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.InDelta(t, 6.7, *out.Vessel.DemandedSpeed, 1e-9)
	assert.Equal(t, 10.0, *out.Vessel.NormalSpeed)
	assert.False(t, out.Decision.StoreNormalSpeed)
}

func TestArbitrate_ReleasesWhenClear(t *testing.T) {
	v := vessel("a", solent, 180, 6.7)
	v.AvoidingLand = true
	v.NormalSpeed = core.Float(10)
	reason := "land ahead"
	v.AvoidanceReason = &reason

	out := Arbitrate(v, []core.Vessel{v}, []geo.LandPolygon{island}, testParams())

	assert.Empty(t, out.Behavior)
	assert.True(t, out.Cleared)
	assert.False(t, out.Vessel.AvoidingLand)
	assert.Nil(t, out.Vessel.AvoidanceReason)
	assert.Nil(t, out.Vessel.NormalSpeed)
	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.Equal(t, 10.0, *out.Vessel.DemandedSpeed)
}

func TestArbitrate_ReleaseRestoresPendingDemand(t *testing.T) {
	a, b := headOn()
	a.Speed = 5
	a.DemandedSpeed = core.Float(15) // still accelerating

	out := Arbitrate(a, []core.Vessel{a, b}, nil, testParams())
	require.Equal(t, ShipCollisionAvoidance, out.Behavior)
	require.NotNil(t, out.Vessel.NormalSpeed)
	assert.Equal(t, 15.0, *out.Vessel.NormalSpeed)
	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.InDelta(t, 3.35, *out.Vessel.DemandedSpeed, 1e-9)

	// the other vessel has gone
	out = Arbitrate(out.Vessel, []core.Vessel{out.Vessel}, nil, testParams())
	assert.True(t, out.Cleared)
	assert.Nil(t, out.Vessel.NormalSpeed)
	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.Equal(t, 15.0, *out.Vessel.DemandedSpeed)
}

func TestArbitrate_ReleasesWhenSpawnWins(t *testing.T) {
	p := testParams()
	p.MaxDistanceFromSpawnNM = 1
	v := vessel("a", solent, 180, 6.7)
	v.CollisionRisks = []core.CollisionRisk{{OtherVesselID: "gone"}}
	v.NormalSpeed = core.Float(10)

	out := Arbitrate(v, []core.Vessel{v}, nil, p)

	assert.Equal(t, ReturnToSpawn, out.Behavior)
	assert.True(t, out.Cleared)
	assert.Empty(t, out.Vessel.CollisionRisks)
	assert.Nil(t, out.Vessel.NormalSpeed)
	require.NotNil(t, out.Vessel.DemandedSpeed)
	assert.Equal(t, 10.0, *out.Vessel.DemandedSpeed)
	require.NotNil(t, out.Vessel.DemandedCourse)
	assert.InDelta(t, geo.Bearing(solent, spawn), *out.Vessel.DemandedCourse, 1e-9)
}

func TestArbitrate_NothingToDo(t *testing.T) {
	v := vessel("a", solent, 180, 10)

	out := Arbitrate(v, []core.Vessel{v}, []geo.LandPolygon{island}, testParams())

	assert.Empty(t, out.Behavior)
	assert.False(t, out.Cleared)
	assert.Equal(t, v.Heading, out.Vessel.Heading)
	assert.Nil(t, out.Vessel.DemandedCourse)
	assert.Nil(t, out.Vessel.DemandedSpeed)
}

func TestArbitrate_IgnoresInactiveOthers(t *testing.T) {
	a, b := headOn()
	b.Status = core.StatusDisabled

	out := Arbitrate(a, []core.Vessel{a, b}, nil, testParams())

	assert.Empty(t, out.Behavior)
	assert.Empty(t, out.Vessel.CollisionRisks)
}

func TestArbitrate_Skipped(t *testing.T) {
	stale := []core.CollisionRisk{{OtherVesselID: "old"}}

	tests := []struct {
		name   string
		mutate func(v *core.Vessel)
	}{
		{"avoidance off", func(v *core.Vessel) { v.CollisionAvoidanceActive = false }},
		{"aground", func(v *core.Vessel) { v.Status = core.StatusAground }},
		{"disabled", func(v *core.Vessel) { v.Status = core.StatusDisabled }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := headOn()
			a.CollisionRisks = stale
			tt.mutate(&a)

			out := Arbitrate(a, []core.Vessel{a, b}, []geo.LandPolygon{island}, testParams())

			assert.Equal(t, a, out.Vessel)
			assert.Empty(t, out.Behavior)
			assert.False(t, out.Cleared)
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("only lowers demanded speed", func(t *testing.T) {
		v := vessel("a", solent, 0, 10)
		v.DemandedSpeed = core.Float(5)

		got := Apply(v, core.NavigationDecision{DemandedSpeed: core.Float(6.7)}, false)
		assert.Equal(t, 5.0, *got.DemandedSpeed)

		got = Apply(v, core.NavigationDecision{DemandedSpeed: core.Float(4)}, false)
		assert.Equal(t, 4.0, *got.DemandedSpeed)
	})

	t.Run("stores normal speed once", func(t *testing.T) {
		v := vessel("a", solent, 0, 10)

		got := Apply(v, core.NavigationDecision{StoreNormalSpeed: true}, false)
		require.NotNil(t, got.NormalSpeed)
		assert.Equal(t, 10.0, *got.NormalSpeed)

		got.Speed = 7
		got = Apply(got, core.NavigationDecision{StoreNormalSpeed: true}, false)
		assert.Equal(t, 10.0, *got.NormalSpeed)
	})

	t.Run("stores pending demand as normal speed", func(t *testing.T) {
		v := vessel("a", solent, 0, 5)
		v.DemandedSpeed = core.Float(12)

		got := Apply(v, core.NavigationDecision{DemandedSpeed: core.Float(3.35), StoreNormalSpeed: true}, false)
		require.NotNil(t, got.NormalSpeed)
		assert.Equal(t, 12.0, *got.NormalSpeed)
		assert.Equal(t, 3.35, *got.DemandedSpeed)
		assert.Equal(t, 12.0, *v.DemandedSpeed)
	})

	t.Run("normalizes course and records reason", func(t *testing.T) {
		v := vessel("a", solent, 0, 10)

		got := Apply(v, core.NavigationDecision{DemandedCourse: core.Float(370), Reason: "why"}, true)
		assert.Equal(t, 10.0, *got.DemandedCourse)
		assert.Equal(t, "why", *got.AvoidanceReason)
		assert.True(t, got.AvoidingLand)
	})

	t.Run("does not alias the decision", func(t *testing.T) {
		d := core.NavigationDecision{DemandedSpeed: core.Float(3)}
		got := Apply(vessel("a", solent, 0, 10), d, false)
		*d.DemandedSpeed = 1
		assert.Equal(t, 3.0, *got.DemandedSpeed)
	})
}
