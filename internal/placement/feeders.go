package placement

import (
	"math"

	"lastmile/internal/cluster"
	"lastmile/pkg/config"
)

// FeederOptions configures density-driven feeder placement.
type FeederOptions struct {
	CoverageRadiusKm float64
	Tiers            []config.FeederTier
	MinSeparationKm  float64
	MaxHubDistanceKm float64 // advisory: recorded, never enforced
	Source           FeederSource
}

// MaxFeedersFor resolves the feeder allowance for a coverage radius from the
// tier table. Radii beyond every bounded tier fall into the open-ended tier
// (max_radius 0) or, absent one, the last tier.
func MaxFeedersFor(radiusKm float64, tiers []config.FeederTier) int {
	if len(tiers) == 0 {
		return 0
	}
	for _, tier := range tiers {
		if tier.MaxRadiusKm <= 0 {
			return tier.MaxFeeders
		}
		if radiusKm <= tier.MaxRadiusKm {
			return tier.MaxFeeders
		}
	}
	return tiers[len(tiers)-1].MaxFeeders
}

// PlaceFeedersDensity turns density clusters into feeder sites.
//
// Clusters arrive sorted by descending density; they are accepted greedily
// subject to the minimum separation and the tier allowance for the coverage
// radius. Coverage comes first: a feeder far from every hub is still placed,
// with the distance recorded against its nearest hub.
func PlaceFeedersDensity(clusters []cluster.Cluster, hubs []Hub, opts FeederOptions) []Feeder {
	maxFeeders := MaxFeedersFor(opts.CoverageRadiusKm, opts.Tiers)
	if maxFeeders <= 0 {
		return nil
	}
	source := opts.Source
	if source == "" {
		source = SourceDensity
	}

	feeders := make([]Feeder, 0, maxFeeders)
	for _, c := range clusters {
		if len(feeders) >= maxFeeders {
			break
		}
		if !minSeparationOK(c.Centroid, feeders, opts.MinSeparationKm) {
			continue
		}
		hubID, hubDist := nearestHub(c.Centroid, hubs)
		capacity, size := feederSizing(c.Count, source)
		feeders = append(feeders, Feeder{
			ID:             len(feeders),
			Location:       c.Centroid,
			CapacityPerDay: capacity,
			Size:           size,
			OrderCount:     c.Count,
			HubID:          hubID,
			HubDistanceKm:  hubDist,
			Source:         source,
		})
	}
	return feeders
}

// feederSizing maps a cluster's order count to feeder capacity and size.
// The grid pass uses coarser banded capacities; the density pass scales
// capacity with a 30% headroom over observed demand.
func feederSizing(orderCount int, source FeederSource) (int, FeederSize) {
	if source == SourceGrid {
		switch {
		case orderCount >= 100:
			return 200, SizeLarge
		case orderCount >= 50:
			return 100, SizeMedium
		default:
			return 50, SizeSmall
		}
	}

	capacity := int(math.Round(float64(orderCount) * 1.3))
	if capacity < 200 {
		capacity = 200
	}
	switch {
	case orderCount >= 400:
		return capacity, SizeLarge
	case orderCount >= 300:
		return capacity, SizeMedium
	default:
		return capacity, SizeSmall
	}
}
