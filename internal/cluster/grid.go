package cluster

import (
	"math"
	"sort"

	"lastmile/pkg/geo"
)

// GridOptions configures grid clustering.
type GridOptions struct {
	CellDeg        float64 // grid cell size in degrees
	MinClusterSize int     // minimum orders per cell to form a cluster
}

// Grid bins points into fixed-size cells and keeps cells that meet the
// minimum occupancy. Cell density is occupancy over the cell's planar area.
func Grid(points []geo.Point, opts GridOptions) []Cluster {
	if len(points) == 0 || opts.CellDeg <= 0 {
		return nil
	}

	type cellKey struct{ latIdx, lonIdx int }
	cells := make(map[cellKey][]int)
	for i, p := range points {
		key := cellKey{
			latIdx: int(math.Floor(p.Lat / opts.CellDeg)),
			lonIdx: int(math.Floor(p.Lon / opts.CellDeg)),
		}
		cells[key] = append(cells[key], i)
	}

	// Deterministic iteration over the map.
	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].latIdx != keys[j].latIdx {
			return keys[i].latIdx < keys[j].latIdx
		}
		return keys[i].lonIdx < keys[j].lonIdx
	})

	cellAreaKm2 := (opts.CellDeg * geo.KmPerDegree) * (opts.CellDeg * geo.KmPerDegree)

	var clusters []Cluster
	for _, k := range keys {
		members := cells[k]
		if len(members) < opts.MinClusterSize {
			continue
		}
		memberPts := make([]geo.Point, len(members))
		for i, idx := range members {
			memberPts[i] = points[idx]
		}
		clusters = append(clusters, Cluster{
			Centroid:      geo.Mean(memberPts),
			Count:         len(members),
			DensityPerKm2: float64(len(members)) / cellAreaKm2,
			Members:       members,
		})
	}

	return sortClusters(clusters)
}
