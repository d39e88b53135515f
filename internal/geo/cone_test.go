package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInCone(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		dist    float64
		brg     float64
		want    bool
	}{
		{"dead ahead", 0, 1, 0, true},
		{"on the edge angle", 0, 1, 15, true},
		{"on the other edge", 0, 1, 345, true},
		{"just outside angle", 0, 1, 16, false},
		{"at the radius", 0, 2, 0, true},
		{"beyond the radius", 0, 2.01, 0, false},
		{"astern", 0, 1, 180, false},
		{"wraps through north", 355, 1, 5, true},
		{"wraps outside", 355, 1, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Destination(solent, tt.dist, tt.brg)
			assert.Equal(t, tt.want, InCone(solent, tt.heading, 2, 15, p))
		})
	}
}

func TestInCone_Apex(t *testing.T) {
	assert.True(t, InCone(solent, 123, 2, 15, solent))
}

func TestCone_Methods(t *testing.T) {
	c := Cone{RadiusNM: 4, HalfAngleDeg: 15}
	land := MustLandPolygon(box(50.1, 50.2, -1.05, -0.95))

	assert.True(t, c.Contains(solent, 0, Destination(solent, 3.5, 10)))
	assert.False(t, c.Contains(solent, 90, Destination(solent, 3.5, 10)))
	assert.True(t, c.Intersects(solent, 0, land))
	assert.False(t, c.Intersects(solent, 180, land))
}
