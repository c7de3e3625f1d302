package geo

import "math"

// Polygon is a closed polygon defined by its vertices in order.
type Polygon struct {
	Vertices []Point
}

// NewPolygon creates a polygon from a list of vertices.
func NewPolygon(pts ...Point) Polygon {
	return Polygon{Vertices: pts}
}

// Len returns the number of vertices.
func (p Polygon) Len() int {
	return len(p.Vertices)
}

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.Vertices) < 3
}

// SignedArea returns the signed area in square degrees using the shoelace
// formula. Positive for counterclockwise winding, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.Vertices[i].Lon * p.Vertices[j].Lat
		area -= p.Vertices[j].Lon * p.Vertices[i].Lat
	}
	return area / 2
}

// Area returns the unsigned area of the polygon in square degrees.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the centroid of the polygon.
func (p Polygon) Centroid() Point {
	n := len(p.Vertices)
	if n == 0 {
		return Point{}
	}
	a := p.SignedArea()
	if n < 3 || math.Abs(a) < 1e-12 {
		// Degenerate: fall back to the vertex average.
		return Mean(p.Vertices)
	}
	var cLat, cLon float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := p.Vertices[i].Lon*p.Vertices[j].Lat - p.Vertices[j].Lon*p.Vertices[i].Lat
		cLon += (p.Vertices[i].Lon + p.Vertices[j].Lon) * cross
		cLat += (p.Vertices[i].Lat + p.Vertices[j].Lat) * cross
	}
	f := 1.0 / (6.0 * a)
	return Point{Lat: cLat * f, Lon: cLon * f}
}

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() BoundingBox {
	return Bounds(p.Vertices)
}

// Contains returns true if the point is inside the polygon using ray casting.
func (p Polygon) Contains(pt Point) bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := p.Vertices[i]
		vj := p.Vertices[j]
		if (vi.Lat > pt.Lat) != (vj.Lat > pt.Lat) &&
			pt.Lon < (vj.Lon-vi.Lon)*(pt.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PerimeterKm returns the total perimeter length in kilometers.
func (p Polygon) PerimeterKm() float64 {
	n := len(p.Vertices)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		total += DistanceKm(p.Vertices[i], p.Vertices[j])
	}
	return total
}
