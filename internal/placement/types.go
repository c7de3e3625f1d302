// Package placement decides where hubs and feeder warehouses go.
//
// Hubs are the large sortation sites; feeders are small auxiliary
// warehouses that bring inventory within delivery range of dense order
// pockets. Placement is coverage-first: feeders chase order density, and
// the hub-distance limit is advisory rather than a hard constraint.
package placement

import "lastmile/pkg/geo"

// FeederSize is the build size of a feeder warehouse.
type FeederSize string

const (
	SizeSmall  FeederSize = "small"
	SizeMedium FeederSize = "medium"
	SizeLarge  FeederSize = "large"
)

// FeederSource records which placement pass produced a feeder.
type FeederSource string

const (
	SourceDensity FeederSource = "density"
	SourceGrid    FeederSource = "grid"
	SourcePincode FeederSource = "pincode"
	SourceGapFill FeederSource = "gap_fill"
)

// Hub is a main sortation warehouse.
type Hub struct {
	ID           int
	Location     geo.Point
	Zone         int     // occupancy-grid zone index, -1 for fallback placements
	DensityScore float64 // zone occupancy share at selection time
	OrderCount   int     // orders in the hub's zone
}

// Feeder is an auxiliary warehouse serving a dense order pocket.
type Feeder struct {
	ID             int
	Location       geo.Point
	CapacityPerDay int
	Size           FeederSize
	OrderCount     int
	HubID          int
	HubDistanceKm  float64
	Source         FeederSource
}

// nearestHub returns the closest hub and its distance.
func nearestHub(p geo.Point, hubs []Hub) (int, float64) {
	bestID := -1
	bestDist := 0.0
	for _, h := range hubs {
		d := geo.DistanceKm(p, h.Location)
		if bestID == -1 || d < bestDist {
			bestID = h.ID
			bestDist = d
		}
	}
	return bestID, bestDist
}

// minSeparationOK reports whether a candidate keeps the minimum spacing to
// every accepted feeder.
func minSeparationOK(p geo.Point, accepted []Feeder, minSepKm float64) bool {
	for _, f := range accepted {
		if geo.DistanceKm(p, f.Location) < minSepKm {
			return false
		}
	}
	return true
}
