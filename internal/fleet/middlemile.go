package fleet

import (
	"math"
	"sort"

	"lastmile/internal/placement"
	"lastmile/pkg/geo"
)

// MiddleMileOptions configures hub-to-feeder lane planning.
type MiddleMileOptions struct {
	ScalingThreshold  int // daily orders per additional vehicle on a lane
	MaxVehiclesPerHub int
	MaxTripsPerDay    int
}

// Lane is one hub-to-feeder replenishment lane.
type Lane struct {
	FeederID    int
	HubID       int
	DistanceKm  float64
	Vehicle     VehicleType
	Vehicles    int
	TripsPerDay int
	DailyOrders int
	DailyCost   int64 // vehicles * trips * per-trip vehicle cost
}

// MiddleMilePlan is the complete hub-to-feeder allocation.
type MiddleMilePlan struct {
	Lanes          []Lane
	TotalVehicles  int
	TotalDailyCost int64
}

// PlanMiddleMile sizes a replenishment lane for every feeder.
//
// Vehicle count scales with lane volume up to the per-hub limit; trips
// clamp between one and the daily maximum. When the clamped trips still
// cannot move the lane's volume, the vehicle count grows past the limit:
// capacity sufficiency outranks the fleet cap.
func PlanMiddleMile(feeders []placement.Feeder, hubs []placement.Hub, policy *Policy, opts MiddleMileOptions) *MiddleMilePlan {
	plan := &MiddleMilePlan{}

	hubLoc := make(map[int]geo.Point, len(hubs))
	for _, h := range hubs {
		hubLoc[h.ID] = h.Location
	}

	for _, f := range feeders {
		if f.OrderCount == 0 {
			continue
		}
		dist := f.HubDistanceKm
		if loc, ok := hubLoc[f.HubID]; ok {
			dist = geo.DistanceKm(f.Location, loc)
		}

		vehicleType := middleMileVehicle(f.CapacityPerDay, dist)
		spec, _ := policy.Spec(vehicleType)

		vehicles := int(math.Ceil(float64(f.OrderCount) / float64(opts.ScalingThreshold)))
		if vehicles < 1 {
			vehicles = 1
		}
		if vehicles > opts.MaxVehiclesPerHub {
			vehicles = opts.MaxVehiclesPerHub
		}

		trips := int(math.Ceil(float64(f.OrderCount) / float64(vehicles*spec.CapacityPerTrip)))
		if trips < 1 {
			trips = 1
		}
		if trips > opts.MaxTripsPerDay {
			trips = opts.MaxTripsPerDay
		}

		// Capacity sufficiency: vehicles * capacity * trips >= daily orders.
		if vehicles*spec.CapacityPerTrip*trips < f.OrderCount {
			vehicles = int(math.Ceil(float64(f.OrderCount) / float64(spec.CapacityPerTrip*trips)))
		}

		plan.Lanes = append(plan.Lanes, Lane{
			FeederID:    f.ID,
			HubID:       f.HubID,
			DistanceKm:  dist,
			Vehicle:     vehicleType,
			Vehicles:    vehicles,
			TripsPerDay: trips,
			DailyOrders: f.OrderCount,
			DailyCost:   int64(vehicles*trips) * spec.DailyCost,
		})
	}

	sort.Slice(plan.Lanes, func(i, j int) bool {
		return plan.Lanes[i].FeederID < plan.Lanes[j].FeederID
	})
	for _, l := range plan.Lanes {
		plan.TotalVehicles += l.Vehicles
		plan.TotalDailyCost += l.DailyCost
	}
	return plan
}

// middleMileVehicle picks the lane vehicle from feeder capacity and lane
// distance.
func middleMileVehicle(capacity int, distKm float64) VehicleType {
	switch {
	case capacity <= 200 && distKm <= 10:
		return VehicleAuto
	case capacity <= 600 && distKm <= 20:
		return VehicleMiniTruck
	default:
		return VehicleTruck
	}
}
