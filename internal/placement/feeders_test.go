package placement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastmile/internal/cluster"
	"lastmile/pkg/config"
	"lastmile/pkg/geo"
)

func densityTiers() []config.FeederTier {
	return []config.FeederTier{
		{MaxRadiusKm: 2.0, MaxFeeders: 6},
		{MaxRadiusKm: 3.0, MaxFeeders: 4},
		{MaxRadiusKm: 5.0, MaxFeeders: 2},
		{MaxRadiusKm: 0, MaxFeeders: 1},
	}
}

// spacedClusters builds n clusters on a line, spaced apart in kilometers,
// with descending density.
func spacedClusters(n int, spacingKm float64, count int) []cluster.Cluster {
	clusters := make([]cluster.Cluster, n)
	for i := range clusters {
		clusters[i] = cluster.Cluster{
			ID:            i,
			Centroid:      geo.Point{Lat: 12.90 + float64(i)*spacingKm/geo.KmPerDegree, Lon: 77.59},
			Count:         count,
			DensityPerKm2: float64(1000 - i),
		}
	}
	return clusters
}

func testHubs() []Hub {
	return []Hub{
		{ID: 0, Location: geo.Point{Lat: 12.90, Lon: 77.59}},
		{ID: 1, Location: geo.Point{Lat: 13.00, Lon: 77.70}},
	}
}

func TestMaxFeedersFor(t *testing.T) {
	tiers := densityTiers()

	tests := []struct {
		radius float64
		want   int
	}{
		{1.0, 6},
		{2.0, 6},
		{2.5, 4},
		{3.0, 4},
		{4.0, 2},
		{5.0, 2},
		{7.0, 1},
		{100.0, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("radius_%.1f", tt.radius), func(t *testing.T) {
			assert.Equal(t, tt.want, MaxFeedersFor(tt.radius, tiers))
		})
	}
}

func TestMaxFeedersFor_StrictlyDecreasing(t *testing.T) {
	tiers := densityTiers()
	radii := []float64{1.5, 2.5, 4.0, 8.0}

	prev := MaxFeedersFor(radii[0], tiers)
	for _, r := range radii[1:] {
		cur := MaxFeedersFor(r, tiers)
		assert.Less(t, cur, prev, "allowance must strictly decrease at radius %.1f", r)
		prev = cur
	}
}

func TestMaxFeedersFor_Empty(t *testing.T) {
	assert.Zero(t, MaxFeedersFor(3.0, nil))
}

func TestPlaceFeedersDensity_TierCap(t *testing.T) {
	clusters := spacedClusters(10, 3.0, 250)

	narrow := PlaceFeedersDensity(clusters, testHubs(), FeederOptions{
		CoverageRadiusKm: 2.0,
		Tiers:            densityTiers(),
		MinSeparationKm:  2.0,
	})
	wide := PlaceFeedersDensity(clusters, testHubs(), FeederOptions{
		CoverageRadiusKm: 3.0,
		Tiers:            densityTiers(),
		MinSeparationKm:  2.0,
	})

	assert.Len(t, narrow, 6)
	assert.Len(t, wide, 4)
	assert.Less(t, len(wide), len(narrow), "wider radius must place fewer feeders")
}

func TestPlaceFeedersDensity_MinSeparation(t *testing.T) {
	// Clusters only 0.5 km apart: separation must thin them out.
	clusters := spacedClusters(10, 0.5, 250)

	feeders := PlaceFeedersDensity(clusters, testHubs(), FeederOptions{
		CoverageRadiusKm: 2.0,
		Tiers:            densityTiers(),
		MinSeparationKm:  2.0,
	})

	for i := 0; i < len(feeders); i++ {
		for j := i + 1; j < len(feeders); j++ {
			assert.GreaterOrEqual(t,
				geo.DistanceKm(feeders[i].Location, feeders[j].Location), 2.0,
				"feeders %d and %d violate separation", i, j)
		}
	}
}

func TestPlaceFeedersDensity_DensestFirst(t *testing.T) {
	clusters := spacedClusters(3, 5.0, 250)

	feeders := PlaceFeedersDensity(clusters, testHubs(), FeederOptions{
		CoverageRadiusKm: 3.0,
		Tiers:            densityTiers(),
		MinSeparationKm:  2.0,
	})

	require.NotEmpty(t, feeders)
	assert.Equal(t, clusters[0].Centroid, feeders[0].Location)
}

func TestPlaceFeedersDensity_CoverageFirst(t *testing.T) {
	// A cluster 50 km from every hub still gets a feeder; the distance is
	// recorded, not enforced.
	far := []cluster.Cluster{{
		ID:            0,
		Centroid:      geo.Point{Lat: 13.40, Lon: 77.59},
		Count:         300,
		DensityPerKm2: 900,
	}}

	feeders := PlaceFeedersDensity(far, testHubs(), FeederOptions{
		CoverageRadiusKm: 3.0,
		Tiers:            densityTiers(),
		MinSeparationKm:  2.0,
		MaxHubDistanceKm: 10.0,
	})

	require.Len(t, feeders, 1)
	assert.Greater(t, feeders[0].HubDistanceKm, 10.0)
	assert.Equal(t, 1, feeders[0].HubID)
}

func TestFeederSizing_Density(t *testing.T) {
	tests := []struct {
		count    int
		wantCap  int
		wantSize FeederSize
	}{
		{100, 200, SizeSmall}, // headroom below the floor
		{200, 260, SizeSmall},
		{300, 390, SizeMedium},
		{400, 520, SizeLarge},
		{500, 650, SizeLarge},
	}

	for _, tt := range tests {
		capacity, size := feederSizing(tt.count, SourceDensity)
		assert.Equal(t, tt.wantCap, capacity, "count %d", tt.count)
		assert.Equal(t, tt.wantSize, size, "count %d", tt.count)
	}
}

func TestFeederSizing_Grid(t *testing.T) {
	tests := []struct {
		count    int
		wantCap  int
		wantSize FeederSize
	}{
		{150, 200, SizeLarge},
		{100, 200, SizeLarge},
		{75, 100, SizeMedium},
		{50, 100, SizeMedium},
		{30, 50, SizeSmall},
	}

	for _, tt := range tests {
		capacity, size := feederSizing(tt.count, SourceGrid)
		assert.Equal(t, tt.wantCap, capacity, "count %d", tt.count)
		assert.Equal(t, tt.wantSize, size, "count %d", tt.count)
	}
}

func TestPlaceFeedersDensity_Empty(t *testing.T) {
	assert.Empty(t, PlaceFeedersDensity(nil, testHubs(), FeederOptions{
		CoverageRadiusKm: 3.0,
		Tiers:            densityTiers(),
		MinSeparationKm:  2.0,
	}))
}
