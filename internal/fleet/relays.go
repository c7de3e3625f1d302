package fleet

import (
	"lastmile/internal/placement"
	"lastmile/pkg/geo"
)

// RelayOptions configures inter-hub shuttle circuits.
type RelayOptions struct {
	MaxStops    int     // hubs per circuit
	MaxDistKm   float64 // total circuit length including the return leg
	MaxMinutes  float64
	TripsPerDay int
	SpeedKmh    float64
}

// RelayRoute is one circular inter-hub shuttle circuit.
type RelayRoute struct {
	HubIDs      []int // visit order; the route returns to the first hub
	DistanceKm  float64
	Minutes     float64
	Vehicle     VehicleType
	TripsPerDay int
	DailyCost   int64
}

// RelayPlan is the set of inter-hub circuits covering all hubs.
type RelayPlan struct {
	Routes         []RelayRoute
	TotalDailyCost int64
}

// PlanHubRelays builds circular inter-hub shuttle routes with a
// nearest-neighbour heuristic. Circuits are capped by stop count, total
// distance and drive time; every hub lands on exactly one circuit.
// A single hub needs no relay.
func PlanHubRelays(hubs []placement.Hub, policy *Policy, opts RelayOptions) *RelayPlan {
	plan := &RelayPlan{}
	if len(hubs) < 2 {
		return plan
	}

	visited := make(map[int]bool, len(hubs))
	loc := make(map[int]geo.Point, len(hubs))
	for _, h := range hubs {
		loc[h.ID] = h.Location
	}

	for _, start := range hubs {
		if visited[start.ID] {
			continue
		}
		route := RelayRoute{HubIDs: []int{start.ID}}
		visited[start.ID] = true
		current := start.ID

		for len(route.HubIDs) < opts.MaxStops {
			nextID, nextDist := nearestUnvisited(current, hubs, loc, visited)
			if nextID < 0 {
				break
			}
			// Candidate circuit: existing legs + next leg + return to start.
			legTotal := route.DistanceKm + nextDist
			returnLeg := geo.DistanceKm(loc[nextID], loc[start.ID])
			candDist := legTotal + returnLeg
			candMinutes := candDist / opts.SpeedKmh * 60
			if candDist > opts.MaxDistKm || candMinutes > opts.MaxMinutes {
				break
			}
			route.HubIDs = append(route.HubIDs, nextID)
			route.DistanceKm = legTotal
			visited[nextID] = true
			current = nextID
		}

		// Close the loop.
		if len(route.HubIDs) > 1 {
			route.DistanceKm += geo.DistanceKm(loc[current], loc[start.ID])
		}
		route.Minutes = route.DistanceKm / opts.SpeedKmh * 60
		route.Vehicle = relayVehicle(route.DistanceKm)
		route.TripsPerDay = opts.TripsPerDay
		if spec, ok := policy.Spec(route.Vehicle); ok {
			route.DailyCost = int64(route.TripsPerDay) * spec.DailyCost
		}
		plan.Routes = append(plan.Routes, route)
	}

	for _, r := range plan.Routes {
		plan.TotalDailyCost += r.DailyCost
	}
	return plan
}

// nearestUnvisited returns the closest unvisited hub to the current one.
func nearestUnvisited(current int, hubs []placement.Hub, loc map[int]geo.Point, visited map[int]bool) (int, float64) {
	bestID := -1
	bestDist := 0.0
	for _, h := range hubs {
		if visited[h.ID] {
			continue
		}
		d := geo.DistanceKm(loc[current], loc[h.ID])
		if bestID < 0 || d < bestDist {
			bestID = h.ID
			bestDist = d
		}
	}
	return bestID, bestDist
}

// relayVehicle picks the shuttle vehicle from the circuit length.
func relayVehicle(distKm float64) VehicleType {
	switch {
	case distKm <= 15:
		return VehicleAuto
	case distKm <= 40:
		return VehicleMiniTruck
	default:
		return VehicleTruck
	}
}
