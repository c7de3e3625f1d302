package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastmile/internal/placement"
	"lastmile/pkg/geo"
)

func relayOpts() RelayOptions {
	return RelayOptions{
		MaxStops:    4,
		MaxDistKm:   80,
		MaxMinutes:  120,
		TripsPerDay: 2,
		SpeedKmh:    40,
	}
}

func TestRelayVehicle(t *testing.T) {
	assert.Equal(t, VehicleAuto, relayVehicle(10))
	assert.Equal(t, VehicleAuto, relayVehicle(15))
	assert.Equal(t, VehicleMiniTruck, relayVehicle(30))
	assert.Equal(t, VehicleTruck, relayVehicle(55))
}

func TestPlanHubRelays(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("single hub needs no relay", func(t *testing.T) {
		hubs := []placement.Hub{{ID: 1, Location: geo.Point{Lat: 12.90, Lon: 77.60}}}
		plan := PlanHubRelays(hubs, policy, relayOpts())
		assert.Empty(t, plan.Routes)
		assert.Zero(t, plan.TotalDailyCost)
	})

	t.Run("compact hubs form one circuit", func(t *testing.T) {
		// Four hubs on a ~2 km square: circuit well under every cap.
		hubs := []placement.Hub{
			{ID: 1, Location: geo.Point{Lat: 12.90, Lon: 77.60}},
			{ID: 2, Location: geo.Point{Lat: 12.92, Lon: 77.60}},
			{ID: 3, Location: geo.Point{Lat: 12.92, Lon: 77.62}},
			{ID: 4, Location: geo.Point{Lat: 12.90, Lon: 77.62}},
		}
		plan := PlanHubRelays(hubs, policy, relayOpts())
		require.Len(t, plan.Routes, 1)

		route := plan.Routes[0]
		assert.Len(t, route.HubIDs, 4)
		assert.Equal(t, 1, route.HubIDs[0])
		assert.InDelta(t, 8.88, route.DistanceKm, 0.1)
		assert.Equal(t, VehicleAuto, route.Vehicle)
		assert.Equal(t, 2, route.TripsPerDay)
		assert.Equal(t, int64(1800), route.DailyCost)
	})

	t.Run("stop cap splits circuits", func(t *testing.T) {
		hubs := make([]placement.Hub, 6)
		for i := range hubs {
			hubs[i] = placement.Hub{ID: i + 1, Location: geo.Point{Lat: 12.90 + 0.01*float64(i), Lon: 77.60}}
		}
		plan := PlanHubRelays(hubs, policy, relayOpts())
		require.Len(t, plan.Routes, 2)

		covered := map[int]bool{}
		for _, r := range plan.Routes {
			assert.LessOrEqual(t, len(r.HubIDs), 4)
			for _, id := range r.HubIDs {
				assert.False(t, covered[id], "hub %d on two circuits", id)
				covered[id] = true
			}
		}
		assert.Len(t, covered, 6)
	})

	t.Run("distance cap splits circuits", func(t *testing.T) {
		// Second hub sits ~55 km out; a round trip exceeds 80 km.
		hubs := []placement.Hub{
			{ID: 1, Location: geo.Point{Lat: 12.90, Lon: 77.60}},
			{ID: 2, Location: geo.Point{Lat: 13.40, Lon: 77.60}},
		}
		plan := PlanHubRelays(hubs, policy, relayOpts())
		require.Len(t, plan.Routes, 2)
		for _, r := range plan.Routes {
			assert.Len(t, r.HubIDs, 1)
			assert.Zero(t, r.DistanceKm)
		}
	})

	t.Run("time cap honoured", func(t *testing.T) {
		hubs := []placement.Hub{
			{ID: 1, Location: geo.Point{Lat: 12.90, Lon: 77.60}},
			{ID: 2, Location: geo.Point{Lat: 13.10, Lon: 77.60}},
			{ID: 3, Location: geo.Point{Lat: 13.10, Lon: 77.80}},
		}
		plan := PlanHubRelays(hubs, policy, relayOpts())
		for _, r := range plan.Routes {
			assert.LessOrEqual(t, r.Minutes, 120.0)
			assert.LessOrEqual(t, r.DistanceKm, 80.0)
		}
	})
}
