// Package boundary loads pincode boundary polygons from GeoJSON.
package boundary

import (
	"encoding/json"
	"fmt"
	"os"

	"lastmile/pkg/apperror"
	"lastmile/pkg/geo"
)

// featureCollection mirrors the subset of GeoJSON we consume.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   geometry       `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// pincodeKeys are the property names checked, in order, for the pincode.
var pincodeKeys = []string{"pincode", "pin_code", "PINCODE", "pin", "postcode"}

// Load reads pincode polygons from a GeoJSON FeatureCollection. Features
// without a recognizable pincode property or with unsupported geometry are
// skipped. Returns a soft BOUNDARY_UNAVAILABLE error when the file is
// missing or yields no usable polygons.
func Load(path string) (map[string]geo.Polygon, error) {
	if path == "" {
		return nil, apperror.NewWarning(apperror.CodeBoundaryUnavailable, "no boundary file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeBoundaryUnavailable,
			"boundary file unreadable").WithSeverity(apperror.SeverityWarning).WithDetails("path", path)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeBoundaryUnavailable,
			"boundary file is not valid GeoJSON").WithSeverity(apperror.SeverityWarning)
	}

	out := make(map[string]geo.Polygon)
	for _, f := range fc.Features {
		pincode := extractPincode(f.Properties)
		if pincode == "" {
			continue
		}
		poly, ok := parsePolygon(f.Geometry)
		if !ok || poly.IsEmpty() {
			continue
		}
		out[pincode] = poly
	}

	if len(out) == 0 {
		return nil, apperror.NewWarning(apperror.CodeBoundaryUnavailable,
			"no usable boundary polygons").WithDetails("path", path)
	}
	return out, nil
}

// extractPincode finds the pincode property under any of the known keys.
func extractPincode(props map[string]any) string {
	for _, key := range pincodeKeys {
		v, ok := props[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%.0f", t)
		}
	}
	return ""
}

// parsePolygon converts Polygon or MultiPolygon coordinates to the outer
// ring. MultiPolygon keeps only the largest part; holes are ignored,
// since pincode boundaries in practice are simple shells.
func parsePolygon(g geometry) (geo.Polygon, bool) {
	switch g.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 {
			return geo.Polygon{}, false
		}
		return ringToPolygon(rings[0]), true

	case "MultiPolygon":
		var polys [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil || len(polys) == 0 {
			return geo.Polygon{}, false
		}
		best := geo.Polygon{}
		bestArea := -1.0
		for _, rings := range polys {
			if len(rings) == 0 {
				continue
			}
			p := ringToPolygon(rings[0])
			if a := p.Area(); a > bestArea {
				best = p
				bestArea = a
			}
		}
		return best, bestArea >= 0

	default:
		return geo.Polygon{}, false
	}
}

// ringToPolygon converts a GeoJSON ring ([lon, lat] pairs) to a Polygon,
// dropping the closing vertex when it repeats the first.
func ringToPolygon(ring [][2]float64) geo.Polygon {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	pts := make([]geo.Point, len(ring))
	for i, c := range ring {
		pts[i] = geo.Point{Lon: c[0], Lat: c[1]}
	}
	return geo.Polygon{Vertices: pts}
}
