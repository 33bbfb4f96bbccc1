package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineSymmetricAndZero(t *testing.T) {
	points := []Point{
		{28.6000, 77.2000},
		{28.6050, 77.2000},
		{19.0760, 72.8777},
		{-33.8688, 151.2093},
		{51.5074, -0.1278},
	}
	for _, a := range points {
		assert.Equal(t, 0.0, Distance(a, a))
		for _, b := range points {
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
		}
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{"about 55m north", Point{28.6000, 77.2000}, Point{28.6005, 77.2000}, 55.6, 1},
		{"about 555m north", Point{28.6000, 77.2000}, Point{28.6050, 77.2000}, 556.0, 2},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111195, 5},
		{"Delhi to Mumbai", Point{28.6139, 77.2090}, Point{19.0760, 72.8777}, 1148095, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.tol)
		})
	}
}

func TestWithin(t *testing.T) {
	office := Point{28.6000, 77.2000}

	d, ok := Within(Point{28.6005, 77.2000}, office, 100)
	assert.True(t, ok)
	assert.Less(t, d, 100.0)

	d, ok = Within(Point{28.6050, 77.2000}, office, 100)
	assert.False(t, ok)
	assert.Equal(t, 556, int(math.Round(d)))
}

func TestHaversineAntipodes(t *testing.T) {
	half := math.Pi * EarthRadiusM
	for _, pair := range [][2]Point{
		{{0, 0}, {0, 180}},
		{{90, 0}, {-90, 0}},
		{{28.6139, 77.2090}, {-28.6139, -102.7910}},
		{{45, 10}, {-45, -170.0000000001}},
	} {
		d, ok := Within(pair[0], pair[1], half+1)
		assert.False(t, math.IsNaN(d), "%v", pair)
		assert.InDelta(t, half, d, 1, "%v", pair)
		assert.True(t, ok)
	}
}
