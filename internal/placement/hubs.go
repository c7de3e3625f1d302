package placement

import (
	"math"
	"sort"

	"lastmile/pkg/geo"
)

// hubGridDim is the occupancy grid resolution used for hub zoning.
const hubGridDim = 5

// HubOptions configures hub placement.
type HubOptions struct {
	Count           int     // target number of hubs
	DensityWeight   float64 // weight of zone density in the selection score
	DistanceWeight  float64 // weight of spread from already placed hubs
	ReferenceDistKm float64 // distance at which the spread term saturates
}

// PlaceHubs selects hub locations over the order drop points.
//
// The order bounding box is divided into a 5x5 occupancy grid. The first hub
// goes to the densest zone; each subsequent hub maximizes a blend of zone
// density and distance from the hubs already placed. Degenerate datasets
// (no spatial spread) fall back to a deterministic offset pattern around the
// median point, and any non-empty input yields at least one hub.
func PlaceHubs(points []geo.Point, opts HubOptions) []Hub {
	if len(points) == 0 {
		return nil
	}
	if opts.Count <= 0 {
		opts.Count = hubGridDim
	}

	zones := buildZones(points)
	if len(zones) == 0 {
		return fallbackHubs(points, opts.Count)
	}

	maxCount := 0
	for _, z := range zones {
		if z.count > maxCount {
			maxCount = z.count
		}
	}

	hubs := make([]Hub, 0, opts.Count)
	used := make(map[int]bool)

	// First hub: densest zone. Zones are pre-sorted, so index 0 wins.
	first := zones[0]
	hubs = append(hubs, Hub{
		ID:           0,
		Location:     first.centroid,
		Zone:         first.index,
		DensityScore: float64(first.count) / float64(maxCount),
		OrderCount:   first.count,
	})
	used[first.index] = true

	// Subsequent hubs: blend density with spread from existing hubs.
	for len(hubs) < opts.Count {
		bestIdx := -1
		bestScore := -1.0
		for i, z := range zones {
			if used[z.index] {
				continue
			}
			normDensity := float64(z.count) / float64(maxCount)
			minDist := math.MaxFloat64
			for _, h := range hubs {
				if d := geo.DistanceKm(z.centroid, h.Location); d < minDist {
					minDist = d
				}
			}
			normDist := minDist / opts.ReferenceDistKm
			if normDist > 1 {
				normDist = 1
			}
			score := opts.DensityWeight*normDensity + opts.DistanceWeight*normDist
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		z := zones[bestIdx]
		hubs = append(hubs, Hub{
			ID:           len(hubs),
			Location:     z.centroid,
			Zone:         z.index,
			DensityScore: float64(z.count) / float64(maxCount),
			OrderCount:   z.count,
		})
		used[z.index] = true
	}

	// Not enough occupied zones: pad with the offset pattern.
	if len(hubs) < opts.Count {
		hubs = padWithOffsets(hubs, points, opts.Count)
	}

	return hubs
}

type zone struct {
	index    int
	count    int
	centroid geo.Point
}

// buildZones bins points into the 5x5 occupancy grid over their bounding box
// and returns the occupied zones sorted by descending count with a
// deterministic index tie-break.
func buildZones(points []geo.Point) []zone {
	bb := geo.Bounds(points)
	latRange := bb.Max.Lat - bb.Min.Lat
	lonRange := bb.Max.Lon - bb.Min.Lon
	if latRange <= 0 || lonRange <= 0 {
		return nil
	}

	counts := make(map[int][]geo.Point)
	for _, p := range points {
		row := int((p.Lat - bb.Min.Lat) / latRange * hubGridDim)
		col := int((p.Lon - bb.Min.Lon) / lonRange * hubGridDim)
		if row >= hubGridDim {
			row = hubGridDim - 1
		}
		if col >= hubGridDim {
			col = hubGridDim - 1
		}
		idx := row*hubGridDim + col
		counts[idx] = append(counts[idx], p)
	}

	zones := make([]zone, 0, len(counts))
	for idx, pts := range counts {
		zones = append(zones, zone{
			index:    idx,
			count:    len(pts),
			centroid: geo.Mean(pts),
		})
	}
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].count != zones[j].count {
			return zones[i].count > zones[j].count
		}
		return zones[i].index < zones[j].index
	})
	return zones
}

// fallbackHubs handles datasets with no usable spread: a deterministic
// offset pattern around the median point, and a single hub at the mean when
// even that collapses.
func fallbackHubs(points []geo.Point, count int) []Hub {
	median := medianPoint(points)
	bb := geo.Bounds(points)
	latStep := (bb.Max.Lat - bb.Min.Lat) / 6
	lonStep := (bb.Max.Lon - bb.Min.Lon) / 6
	if latStep == 0 {
		latStep = 0.01
	}
	if lonStep == 0 {
		lonStep = 0.01
	}

	offsets := offsetPattern(count)
	hubs := make([]Hub, 0, count)
	for i, off := range offsets {
		hubs = append(hubs, Hub{
			ID:       i,
			Location: geo.Point{Lat: median.Lat + off.Lat*latStep, Lon: median.Lon + off.Lon*lonStep},
			Zone:     -1,
		})
	}
	if len(hubs) == 0 {
		hubs = append(hubs, Hub{ID: 0, Location: geo.Mean(points), Zone: -1})
	}
	return hubs
}

// padWithOffsets extends a short hub list to the target count using the
// offset pattern around the median point.
func padWithOffsets(hubs []Hub, points []geo.Point, count int) []Hub {
	median := medianPoint(points)
	bb := geo.Bounds(points)
	latStep := (bb.Max.Lat - bb.Min.Lat) / 6
	lonStep := (bb.Max.Lon - bb.Min.Lon) / 6
	if latStep == 0 {
		latStep = 0.01
	}
	if lonStep == 0 {
		lonStep = 0.01
	}

	offsets := offsetPattern(count)
	for i := len(hubs); i < count && i < len(offsets); i++ {
		hubs = append(hubs, Hub{
			ID:       i,
			Location: geo.Point{Lat: median.Lat + offsets[i].Lat*latStep, Lon: median.Lon + offsets[i].Lon*lonStep},
			Zone:     -1,
		})
	}
	return hubs
}

// offsetPattern returns unit offsets (to be scaled by the range step):
// center first, then the four compass directions, then diagonals.
func offsetPattern(count int) []geo.Point {
	pattern := []geo.Point{
		{Lat: 0, Lon: 0},
		{Lat: 1, Lon: 0},
		{Lat: -1, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 0, Lon: -1},
		{Lat: 1, Lon: 1},
		{Lat: -1, Lon: -1},
		{Lat: 1, Lon: -1},
		{Lat: -1, Lon: 1},
	}
	if count < len(pattern) {
		return pattern[:count]
	}
	return pattern
}

// medianPoint returns the per-axis median of the points.
func medianPoint(points []geo.Point) geo.Point {
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lons[i] = p.Lon
	}
	sort.Float64s(lats)
	sort.Float64s(lons)
	return geo.Point{Lat: median(lats), Lon: median(lons)}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
