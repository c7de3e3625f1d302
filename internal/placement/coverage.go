package placement

import (
	"math"
	"sort"

	"lastmile/pkg/geo"
)

// GapFillOptions configures the coverage gap-fill pass.
type GapFillOptions struct {
	UncoveredRadiusKm float64 // orders farther than this from every feeder are uncovered
	CellDeg           float64 // regrouping grid for uncovered orders
	MinOrders         int     // minimum uncovered orders per cell to earn a feeder
	MinSeparationKm   float64
	MaxHubDistanceKm  float64
}

// gapFeederCapacity is the fixed daily capacity of a gap-fill feeder.
const gapFeederCapacity = 50

// FillCoverageGaps adds small feeders for order pockets that the main
// placement passes left uncovered. Uncovered orders are regrouped on a
// coarse grid; any cell with enough of them gets a small feeder, subject to
// the separation rule against all existing feeders and the hub distance
// limit (enforced here, unlike the coverage-first main passes).
func FillCoverageGaps(points []geo.Point, feeders []Feeder, hubs []Hub, opts GapFillOptions) []Feeder {
	if len(points) == 0 || opts.CellDeg <= 0 {
		return feeders
	}

	var uncovered []geo.Point
	for _, p := range points {
		covered := false
		for _, f := range feeders {
			if geo.DistanceKm(p, f.Location) <= opts.UncoveredRadiusKm {
				covered = true
				break
			}
		}
		if !covered {
			uncovered = append(uncovered, p)
		}
	}
	if len(uncovered) == 0 {
		return feeders
	}

	type cellKey struct{ latIdx, lonIdx int }
	cells := make(map[cellKey][]geo.Point)
	for _, p := range uncovered {
		key := cellKey{
			latIdx: int(math.Floor(p.Lat / opts.CellDeg)),
			lonIdx: int(math.Floor(p.Lon / opts.CellDeg)),
		}
		cells[key] = append(cells[key], p)
	}

	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	// Biggest gaps first, then grid order.
	sort.Slice(keys, func(i, j int) bool {
		ni, nj := len(cells[keys[i]]), len(cells[keys[j]])
		if ni != nj {
			return ni > nj
		}
		if keys[i].latIdx != keys[j].latIdx {
			return keys[i].latIdx < keys[j].latIdx
		}
		return keys[i].lonIdx < keys[j].lonIdx
	})

	out := feeders
	for _, k := range keys {
		members := cells[k]
		if len(members) < opts.MinOrders {
			continue
		}
		centroid := geo.Mean(members)
		if !minSeparationOK(centroid, out, opts.MinSeparationKm) {
			continue
		}
		hubID, hubDist := nearestHub(centroid, hubs)
		if hubID >= 0 && opts.MaxHubDistanceKm > 0 && hubDist > opts.MaxHubDistanceKm {
			continue
		}
		out = append(out, Feeder{
			ID:             len(out),
			Location:       centroid,
			CapacityPerDay: gapFeederCapacity,
			Size:           SizeSmall,
			OrderCount:     len(members),
			HubID:          hubID,
			HubDistanceKm:  hubDist,
			Source:         SourceGapFill,
		})
	}
	return out
}
