// Package geo provides planar geometry over geographic coordinates.
//
// All distances use a flat-earth approximation with a fixed conversion of
// 111 km per degree. At metro scale (tens of kilometers) the error against
// great-circle distance is negligible for planning purposes.
package geo

import "math"

// KmPerDegree is the planar conversion factor between coordinate degrees
// and kilometers.
const KmPerDegree = 111.0

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceKm returns the planar distance between two points in kilometers.
func DistanceKm(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) * KmPerDegree
}

// Mean returns the arithmetic mean of the given points.
// Returns the zero point for an empty slice.
func Mean(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sumLat, sumLon float64
	for _, p := range pts {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(pts))
	return Point{Lat: sumLat / n, Lon: sumLon / n}
}

// StdDev returns the per-axis standard deviation of the given points.
func StdDev(pts []Point) (latStd, lonStd float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	mean := Mean(pts)
	var varLat, varLon float64
	for _, p := range pts {
		dLat := p.Lat - mean.Lat
		dLon := p.Lon - mean.Lon
		varLat += dLat * dLat
		varLon += dLon * dLon
	}
	n := float64(len(pts))
	return math.Sqrt(varLat / n), math.Sqrt(varLon / n)
}

// BoundingBox is an axis-aligned box over coordinates.
type BoundingBox struct {
	Min Point
	Max Point
}

// Bounds returns the bounding box of the given points.
// Returns a zero box for an empty slice.
func Bounds(pts []Point) BoundingBox {
	if len(pts) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		if p.Lat < bb.Min.Lat {
			bb.Min.Lat = p.Lat
		}
		if p.Lon < bb.Min.Lon {
			bb.Min.Lon = p.Lon
		}
		if p.Lat > bb.Max.Lat {
			bb.Max.Lat = p.Lat
		}
		if p.Lon > bb.Max.Lon {
			bb.Max.Lon = p.Lon
		}
	}
	return bb
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.Min.Lat && p.Lat <= b.Max.Lat &&
		p.Lon >= b.Min.Lon && p.Lon <= b.Max.Lon
}

// WidthKm returns the longitudinal extent of the box in kilometers.
func (b BoundingBox) WidthKm() float64 {
	return (b.Max.Lon - b.Min.Lon) * KmPerDegree
}

// HeightKm returns the latitudinal extent of the box in kilometers.
func (b BoundingBox) HeightKm() float64 {
	return (b.Max.Lat - b.Min.Lat) * KmPerDegree
}

// AreaKm2 returns the area of the box in square kilometers.
func (b BoundingBox) AreaKm2() float64 {
	return b.WidthKm() * b.HeightKm()
}

// Center returns the center point of the box.
func (b BoundingBox) Center() Point {
	return Point{
		Lat: (b.Min.Lat + b.Max.Lat) / 2,
		Lon: (b.Min.Lon + b.Max.Lon) / 2,
	}
}

// Intersect returns the intersection of two boxes and whether it is non-empty.
func (b BoundingBox) Intersect(other BoundingBox) (BoundingBox, bool) {
	out := BoundingBox{
		Min: Point{Lat: math.Max(b.Min.Lat, other.Min.Lat), Lon: math.Max(b.Min.Lon, other.Min.Lon)},
		Max: Point{Lat: math.Min(b.Max.Lat, other.Max.Lat), Lon: math.Min(b.Max.Lon, other.Max.Lon)},
	}
	if out.Min.Lat > out.Max.Lat || out.Min.Lon > out.Max.Lon {
		return BoundingBox{}, false
	}
	return out, true
}

// OverlapFraction returns the intersection area as a fraction of this box's
// own area. Zero-area boxes overlap nothing.
func (b BoundingBox) OverlapFraction(other BoundingBox) float64 {
	own := b.AreaKm2()
	if own <= 0 {
		return 0
	}
	inter, ok := b.Intersect(other)
	if !ok {
		return 0
	}
	return inter.AreaKm2() / own
}
