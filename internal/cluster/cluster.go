// Package cluster finds dense order concentrations that drive warehouse
// placement. Two strategies are available: fixed-grid binning and DBSCAN
// over standardized coordinates.
package cluster

import (
	"sort"

	"lastmile/pkg/geo"
)

// Cluster is a dense group of order drop points.
type Cluster struct {
	ID            int
	Centroid      geo.Point
	Count         int
	DensityPerKm2 float64
	Members       []int // indices into the source point slice
}

// sortClusters orders clusters by descending density with a deterministic
// tie-break on centroid latitude, then longitude. IDs are reassigned to
// match the final order.
func sortClusters(clusters []Cluster) []Cluster {
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if a.DensityPerKm2 != b.DensityPerKm2 {
			return a.DensityPerKm2 > b.DensityPerKm2
		}
		if a.Centroid.Lat != b.Centroid.Lat {
			return a.Centroid.Lat < b.Centroid.Lat
		}
		return a.Centroid.Lon < b.Centroid.Lon
	})
	for i := range clusters {
		clusters[i].ID = i
	}
	return clusters
}
