package fleet

import (
	"sort"

	"lastmile/internal/orders"
	"lastmile/pkg/geo"
)

// FirstMileOptions configures pickup collection planning.
type FirstMileOptions struct {
	ClusterRadiusKm float64 // pickups within this radius share a route
	TierPolicy      *orders.TierPolicy
}

// PickupRoute is one first-mile collection route anchored at the busiest
// pickup of a proximity cluster.
type PickupRoute struct {
	Anchor      string // anchor pickup name
	Location    geo.Point
	Pickups     []string // all pickup names on the route, anchor first
	DailyOrders int
	Vehicle     VehicleType
	Tier        orders.CustomerTier
	DailyCost   int64
}

// FirstMilePlan is the complete first-mile allocation.
type FirstMilePlan struct {
	Routes         []PickupRoute
	TotalVehicles  int
	TotalDailyCost int64
}

type pickupAgg struct {
	name     string
	location geo.Point
	count    int
	volume   float64
	largest  orders.PackageClass
	tier     orders.CustomerTier
}

// PlanFirstMile groups pickup locations into proximity clusters and assigns
// a collection vehicle to each. The anchor is the pickup with the most
// orders; vehicle class escalates with daily volume, the largest package on
// the route, and the anchor customer's service tier.
func PlanFirstMile(ds *orders.Dataset, policy *Policy, opts FirstMileOptions) *FirstMilePlan {
	plan := &FirstMilePlan{}
	if ds.Len() == 0 {
		return plan
	}
	tierPolicy := opts.TierPolicy
	if tierPolicy == nil {
		tierPolicy = orders.NewTierPolicy(nil)
	}

	// Aggregate per pickup name.
	byName := make(map[string]*pickupAgg)
	for _, o := range ds.Orders {
		agg, ok := byName[o.Pickup]
		if !ok {
			agg = &pickupAgg{
				name:     o.Pickup,
				location: o.PickupLoc,
				largest:  o.Package,
				tier:     tierPolicy.Tier(o.Customer),
			}
			byName[o.Pickup] = agg
		}
		agg.count++
		agg.volume += o.Package.VolumeM3()
		if packageRank(o.Package) > packageRank(agg.largest) {
			agg.largest = o.Package
		}
		if tierPolicy.Tier(o.Customer) == orders.TierAnchor {
			agg.tier = orders.TierAnchor
		}
	}

	// Busiest pickups first, deterministic name tie-break.
	aggs := make([]*pickupAgg, 0, len(byName))
	for _, a := range byName {
		aggs = append(aggs, a)
	}
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].count != aggs[j].count {
			return aggs[i].count > aggs[j].count
		}
		return aggs[i].name < aggs[j].name
	})

	// Greedy proximity clustering around the busiest unassigned pickup.
	assigned := make(map[string]bool)
	for _, anchor := range aggs {
		if assigned[anchor.name] {
			continue
		}
		route := PickupRoute{
			Anchor:   anchor.name,
			Location: anchor.location,
			Tier:     anchor.tier,
		}
		routeVolume := 0.0
		largest := anchor.largest
		for _, other := range aggs {
			if assigned[other.name] {
				continue
			}
			if other.name != anchor.name &&
				geo.DistanceKm(anchor.location, other.location) > opts.ClusterRadiusKm {
				continue
			}
			assigned[other.name] = true
			route.Pickups = append(route.Pickups, other.name)
			route.DailyOrders += other.count
			routeVolume += other.volume
			largest = maxPackage(largest, other.largest)
			if other.tier == orders.TierAnchor {
				route.Tier = orders.TierAnchor
			}
		}

		route.Vehicle = firstMileVehicle(route.DailyOrders)
		route.Vehicle = escalate(route.Vehicle, policy.SelectVehicle(largest, routeVolume))
		if route.Tier == orders.TierAnchor {
			// Anchor customers get dedicated mini truck capacity.
			route.Vehicle = escalate(route.Vehicle, VehicleMiniTruck)
		}

		if spec, ok := policy.Spec(route.Vehicle); ok {
			route.DailyCost = spec.DailyCost
		}
		plan.Routes = append(plan.Routes, route)
	}

	plan.TotalVehicles = len(plan.Routes)
	for _, r := range plan.Routes {
		plan.TotalDailyCost += r.DailyCost
	}
	return plan
}

// firstMileVehicle maps daily route volume to the base vehicle class.
func firstMileVehicle(dailyOrders int) VehicleType {
	switch {
	case dailyOrders <= 80:
		return VehicleBike
	case dailyOrders <= 120:
		return VehicleAuto
	default:
		return VehicleMiniTruck
	}
}

// packageRank orders package classes by volume.
func packageRank(p orders.PackageClass) int {
	switch p {
	case orders.PackageSmall:
		return 0
	case orders.PackageMedium:
		return 1
	case orders.PackageLarge:
		return 2
	case orders.PackageXLarge:
		return 3
	case orders.PackageXXLarge:
		return 4
	default:
		return 1
	}
}

func maxPackage(a, b orders.PackageClass) orders.PackageClass {
	if packageRank(a) >= packageRank(b) {
		return a
	}
	return b
}
