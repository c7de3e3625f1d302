package placement

import (
	"math"
	"sort"

	"lastmile/pkg/apperror"
	"lastmile/pkg/config"
	"lastmile/pkg/geo"
)

// PincodeOptions configures boundary-driven feeder placement.
type PincodeOptions struct {
	CoverageRadiusKm  float64
	Tiers             []config.FeederTier
	MaxHubDistanceKm  float64
	OverlapRejectFrac float64 // reject candidates overlapping accepted areas beyond this fraction
}

// pincodeCandidate scores one boundary polygon.
type pincodeCandidate struct {
	pincode  string
	centroid geo.Point
	bounds   geo.BoundingBox
	count    int
	score    float64
}

// PlaceFeedersPincode places feeders per pincode boundary polygon.
//
// Each boundary is scored by 0.6*density + 0.4*order count; candidates are
// accepted in score order unless their bounding box overlaps an accepted
// candidate's area beyond the rejection fraction. Returns a soft
// BOUNDARY_UNAVAILABLE error when no usable boundaries exist so that the
// caller can fall back to the density strategy.
func PlaceFeedersPincode(points []geo.Point, boundaries map[string]geo.Polygon, hubs []Hub, opts PincodeOptions) ([]Feeder, error) {
	if len(boundaries) == 0 {
		return nil, apperror.NewWarning(apperror.CodeBoundaryUnavailable,
			"no pincode boundaries loaded")
	}

	// Deterministic boundary order.
	pincodes := make([]string, 0, len(boundaries))
	for pc := range boundaries {
		pincodes = append(pincodes, pc)
	}
	sort.Strings(pincodes)

	candidates := make([]pincodeCandidate, 0, len(pincodes))
	for _, pc := range pincodes {
		poly := boundaries[pc]
		if poly.IsEmpty() {
			continue
		}
		count := 0
		for _, p := range points {
			if poly.Contains(p) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		bounds := poly.Bounds()
		area := bounds.AreaKm2()
		if area < 0.01 {
			area = 0.01
		}
		density := float64(count) / area
		candidates = append(candidates, pincodeCandidate{
			pincode:  pc,
			centroid: poly.Centroid(),
			bounds:   bounds,
			count:    count,
			score:    0.6*density + 0.4*float64(count),
		})
	}

	if len(candidates) == 0 {
		return nil, apperror.NewWarning(apperror.CodeBoundaryUnavailable,
			"no boundary contains any orders")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pincode < candidates[j].pincode
	})

	maxFeeders := MaxFeedersFor(opts.CoverageRadiusKm, opts.Tiers)

	var feeders []Feeder
	var acceptedBounds []geo.BoundingBox
	for _, cand := range candidates {
		if len(feeders) >= maxFeeders {
			break
		}
		if overlapsAccepted(cand.bounds, acceptedBounds, opts.OverlapRejectFrac) {
			continue
		}
		hubID, hubDist := nearestHub(cand.centroid, hubs)
		capacity, size := pincodeSizing(cand.count)
		feeders = append(feeders, Feeder{
			ID:             len(feeders),
			Location:       cand.centroid,
			CapacityPerDay: capacity,
			Size:           size,
			OrderCount:     cand.count,
			HubID:          hubID,
			HubDistanceKm:  hubDist,
			Source:         SourcePincode,
		})
		acceptedBounds = append(acceptedBounds, cand.bounds)
	}

	return feeders, nil
}

// overlapsAccepted reports whether the candidate's own area overlaps any
// accepted area beyond the rejection fraction.
func overlapsAccepted(b geo.BoundingBox, accepted []geo.BoundingBox, frac float64) bool {
	for _, a := range accepted {
		if b.OverlapFraction(a) > frac {
			return true
		}
	}
	return false
}

// pincodeSizing maps a boundary's order count to capacity and size.
func pincodeSizing(orderCount int) (int, FeederSize) {
	capacity := int(math.Round(float64(orderCount) * 1.2))
	if capacity < 100 {
		capacity = 100
	}
	if capacity > 400 {
		capacity = 400
	}
	switch {
	case orderCount >= 250:
		return capacity, SizeLarge
	case orderCount >= 150:
		return capacity, SizeMedium
	default:
		return capacity, SizeSmall
	}
}
