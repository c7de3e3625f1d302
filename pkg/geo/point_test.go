package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{12.9716, 77.5946}, Point{12.9716, 77.5946}, 0},
		{"one degree lat", Point{12, 77}, Point{13, 77}, 111.0},
		{"one degree lon", Point{12, 77}, Point{12, 78}, 111.0},
		{"diagonal", Point{0, 0}, Point{3, 4}, 5 * 111.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Point{12.97, 77.59}
	b := Point{13.01, 77.65}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-12)
}

func TestMean(t *testing.T) {
	pts := []Point{{10, 70}, {14, 74}}
	m := Mean(pts)
	assert.InDelta(t, 12.0, m.Lat, 1e-12)
	assert.InDelta(t, 72.0, m.Lon, 1e-12)

	assert.Equal(t, Point{}, Mean(nil))
}

func TestStdDev(t *testing.T) {
	pts := []Point{{10, 70}, {14, 70}, {10, 74}, {14, 74}}
	latStd, lonStd := StdDev(pts)
	assert.InDelta(t, 2.0, latStd, 1e-12)
	assert.InDelta(t, 2.0, lonStd, 1e-12)

	latStd, lonStd = StdDev(nil)
	assert.Zero(t, latStd)
	assert.Zero(t, lonStd)
}

func TestBounds(t *testing.T) {
	pts := []Point{{12, 77}, {13, 76}, {12.5, 78}}
	bb := Bounds(pts)

	assert.Equal(t, Point{12, 76}, bb.Min)
	assert.Equal(t, Point{13, 78}, bb.Max)
	assert.True(t, bb.Contains(Point{12.5, 77}))
	assert.False(t, bb.Contains(Point{11, 77}))
}

func TestBoundingBox_Dimensions(t *testing.T) {
	bb := BoundingBox{Min: Point{12, 77}, Max: Point{12.1, 77.2}}

	assert.InDelta(t, 0.2*111, bb.WidthKm(), 1e-9)
	assert.InDelta(t, 0.1*111, bb.HeightKm(), 1e-9)
	assert.InDelta(t, 0.2*111*0.1*111, bb.AreaKm2(), 1e-9)

	c := bb.Center()
	assert.InDelta(t, 12.05, c.Lat, 1e-12)
	assert.InDelta(t, 77.1, c.Lon, 1e-12)
}

func TestBoundingBox_Intersect(t *testing.T) {
	a := BoundingBox{Min: Point{0, 0}, Max: Point{2, 2}}
	b := BoundingBox{Min: Point{1, 1}, Max: Point{3, 3}}

	inter, ok := a.Intersect(b)
	assert.True(t, ok)
	assert.Equal(t, Point{1, 1}, inter.Min)
	assert.Equal(t, Point{2, 2}, inter.Max)

	far := BoundingBox{Min: Point{5, 5}, Max: Point{6, 6}}
	_, ok = a.Intersect(far)
	assert.False(t, ok)
}

func TestBoundingBox_OverlapFraction(t *testing.T) {
	a := BoundingBox{Min: Point{0, 0}, Max: Point{2, 2}}
	b := BoundingBox{Min: Point{0, 1}, Max: Point{2, 3}}

	// Half of a overlaps b.
	assert.InDelta(t, 0.5, a.OverlapFraction(b), 1e-9)

	far := BoundingBox{Min: Point{5, 5}, Max: Point{6, 6}}
	assert.Zero(t, a.OverlapFraction(far))

	degenerate := BoundingBox{Min: Point{1, 1}, Max: Point{1, 1}}
	assert.Zero(t, degenerate.OverlapFraction(a))
}

func TestBoundingBox_Empty(t *testing.T) {
	bb := Bounds(nil)
	assert.Zero(t, bb.AreaKm2())
}

func TestDistanceKm_NeverNegative(t *testing.T) {
	pts := []Point{{12.9, 77.5}, {13.1, 77.7}, {12.8, 77.4}}
	for _, a := range pts {
		for _, b := range pts {
			assert.True(t, DistanceKm(a, b) >= 0)
			assert.False(t, math.IsNaN(DistanceKm(a, b)))
		}
	}
}
