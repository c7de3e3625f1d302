package cluster

import (
	"context"
	"math"

	"lastmile/pkg/apperror"
	"lastmile/pkg/geo"
)

// minDBSCANPoints is the smallest dataset DBSCAN operates on. Below this the
// standardized coordinate space is too unstable to be meaningful.
const minDBSCANPoints = 50

// minClusterAreaKm2 floors the cluster area estimate so that near-degenerate
// clusters do not produce unbounded densities.
const minClusterAreaKm2 = 0.1

// DBSCANOptions configures density clustering.
type DBSCANOptions struct {
	Eps            float64 // neighborhood radius in standardized coordinate space
	MinClusterSize int     // drives the DBSCAN min_samples derivation
}

// minSamples derives the DBSCAN core-point threshold from the configured
// minimum cluster size.
func (o DBSCANOptions) minSamples() int {
	ms := o.MinClusterSize / 5
	if ms < 4 {
		ms = 4
	}
	return ms
}

// DBSCAN clusters points over standardized (zero mean, unit variance)
// coordinates and drops noise. Returns a soft INSUFFICIENT_DATA error when
// fewer than 50 points are available; callers treat that as an empty result.
func DBSCAN(ctx context.Context, points []geo.Point, opts DBSCANOptions) ([]Cluster, error) {
	if len(points) < minDBSCANPoints {
		return nil, apperror.NewWarning(apperror.CodeInsufficientData,
			"not enough points for density clustering").
			WithDetails("points", len(points)).
			WithDetails("required", minDBSCANPoints)
	}

	scaled := standardize(points)
	labels, err := dbscanLabels(ctx, scaled, opts.Eps, opts.minSamples())
	if err != nil {
		return nil, err
	}

	// Group member indices by cluster label, skipping noise (-1).
	groups := make(map[int][]int)
	maxLabel := -1
	for i, label := range labels {
		if label < 0 {
			continue
		}
		groups[label] = append(groups[label], i)
		if label > maxLabel {
			maxLabel = label
		}
	}

	var clusters []Cluster
	for label := 0; label <= maxLabel; label++ {
		members := groups[label]
		if len(members) == 0 {
			continue
		}
		memberPts := make([]geo.Point, len(members))
		for i, idx := range members {
			memberPts[i] = points[idx]
		}
		centroid := geo.Mean(memberPts)
		clusters = append(clusters, Cluster{
			Centroid:      centroid,
			Count:         len(members),
			DensityPerKm2: float64(len(members)) / clusterAreaKm2(memberPts, centroid),
			Members:       members,
		})
	}

	// Every point labelled noise: the data has no dense pockets at this
	// eps, which callers treat as a soft signal to fall back to grid
	// clustering.
	if len(clusters) == 0 {
		return nil, apperror.ErrNoClusters
	}
	return sortClusters(clusters), nil
}

// clusterAreaKm2 estimates the footprint of a cluster from its coordinate
// spread, with a longitude correction for latitude and a minimum floor.
func clusterAreaKm2(pts []geo.Point, centroid geo.Point) float64 {
	latStd, lonStd := geo.StdDev(pts)
	area := (latStd * geo.KmPerDegree) *
		(lonStd * geo.KmPerDegree * math.Cos(centroid.Lat*math.Pi/180))
	if area < minClusterAreaKm2 {
		return minClusterAreaKm2
	}
	return area
}

// standardize maps points to zero mean and unit variance per axis.
func standardize(points []geo.Point) []geo.Point {
	mean := geo.Mean(points)
	latStd, lonStd := geo.StdDev(points)
	if latStd == 0 {
		latStd = 1
	}
	if lonStd == 0 {
		lonStd = 1
	}
	out := make([]geo.Point, len(points))
	for i, p := range points {
		out[i] = geo.Point{
			Lat: (p.Lat - mean.Lat) / latStd,
			Lon: (p.Lon - mean.Lon) / lonStd,
		}
	}
	return out
}

// dbscanLabels runs classic DBSCAN over the scaled points. Labels are cluster
// ids starting at 0; noise points get -1. Euclidean distance in scaled space.
func dbscanLabels(ctx context.Context, pts []geo.Point, eps float64, minSamples int) ([]int, error) {
	const (
		unvisited = -2
		noise     = -1
	)

	labels := make([]int, len(pts))
	for i := range labels {
		labels[i] = unvisited
	}

	neighbors := func(i int) []int {
		var out []int
		for j := range pts {
			if scaledDist(pts[i], pts[j]) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	clusterID := 0
	for i := range pts {
		if i%100 == 0 {
			select {
			case <-ctx.Done():
				return nil, apperror.Wrap(ctx.Err(), apperror.CodeCanceled, "clustering canceled")
			default:
			}
		}

		if labels[i] != unvisited {
			continue
		}

		nbrs := neighbors(i)
		if len(nbrs) < minSamples {
			labels[i] = noise
			continue
		}

		labels[i] = clusterID
		// Expand the cluster over the seed set. Seeds may grow while
		// iterating; index-based loop handles that.
		seeds := append([]int(nil), nbrs...)
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == noise {
				labels[j] = clusterID
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = clusterID
			jNbrs := neighbors(j)
			if len(jNbrs) >= minSamples {
				seeds = append(seeds, jNbrs...)
			}
		}
		clusterID++
	}

	return labels, nil
}

func scaledDist(a, b geo.Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}
