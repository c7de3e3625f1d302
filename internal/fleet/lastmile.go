package fleet

import (
	"sort"

	"lastmile/internal/orders"
	"lastmile/internal/placement"
	"lastmile/pkg/apperror"
	"lastmile/pkg/geo"
)

// MixName identifies a delivery fleet mix preset.
type MixName string

const (
	MixAutoHeavy MixName = "auto_heavy"
	MixBalanced  MixName = "balanced"
	MixBikeHeavy MixName = "bike_heavy"
)

// mixShares maps each preset to its base auto share. Bike takes the rest.
var mixShares = map[MixName]float64{
	MixAutoHeavy: 0.7,
	MixBalanced:  0.5,
	MixBikeHeavy: 0.3,
}

// LastMileOptions configures final delivery planning.
type LastMileOptions struct {
	Mix             MixName
	BikeRate        int64   // rupees per order delivered by bike
	AutoRate        int64   // rupees per order delivered by auto
	BikeShiftDistKm float64 // avg drop distance at or below this favours bikes
	AutoShiftDistKm float64 // avg drop distance at or above this favours autos
	ShiftStep       float64 // share moved when a distance shift applies
	ShareCap        float64 // upper bound on either share after shifting
}

// LastMilePlan is the final delivery allocation and its daily cost.
type LastMilePlan struct {
	Mix            MixName
	BikeShare      float64
	AutoShare      float64
	AvgDropDistKm  float64
	DailyOrders    int
	DailyCost      int64
	MonthlyCost    int64
	BikeCostPerDay int64
	AutoCostPerDay int64
}

// ValidMix reports whether the name is a known mix preset.
func ValidMix(name MixName) bool {
	_, ok := mixShares[name]
	return ok
}

// PlanLastMile allocates final delivery between bikes and autos.
//
// The mix preset sets the base shares; the average distance from drop
// points to their nearest warehouse then shifts the split. Short hauls
// favour bikes, long hauls favour autos, and neither share exceeds the
// cap. A dataset with no orders costs nothing.
func PlanLastMile(ds *orders.Dataset, hubs []placement.Hub, feeders []placement.Feeder, opts LastMileOptions) (*LastMilePlan, error) {
	autoShare, ok := mixShares[opts.Mix]
	if !ok {
		return nil, apperror.New(apperror.CodeInvalidFleetMix, "unknown fleet mix").
			WithDetails("mix", string(opts.Mix))
	}

	plan := &LastMilePlan{Mix: opts.Mix}
	if ds.Len() == 0 {
		plan.AutoShare = autoShare
		plan.BikeShare = 1 - autoShare
		return plan, nil
	}

	warehouses := make([]geo.Point, 0, len(hubs)+len(feeders))
	for _, h := range hubs {
		warehouses = append(warehouses, h.Location)
	}
	for _, f := range feeders {
		warehouses = append(warehouses, f.Location)
	}
	plan.AvgDropDistKm = avgNearestDistKm(ds.DropPoints(), warehouses)

	switch {
	case len(warehouses) == 0:
		// No network yet: keep the preset shares.
	case plan.AvgDropDistKm <= opts.BikeShiftDistKm:
		autoShare = shiftShare(autoShare, -opts.ShiftStep, opts.ShareCap)
	case plan.AvgDropDistKm >= opts.AutoShiftDistKm:
		autoShare = shiftShare(autoShare, opts.ShiftStep, opts.ShareCap)
	}

	plan.AutoShare = autoShare
	plan.BikeShare = 1 - autoShare
	plan.DailyOrders = ds.Len()

	perOrder := plan.AutoShare*float64(opts.AutoRate) + plan.BikeShare*float64(opts.BikeRate)
	plan.AutoCostPerDay = int64(plan.AutoShare * float64(ds.Len()) * float64(opts.AutoRate))
	plan.BikeCostPerDay = int64(plan.BikeShare * float64(ds.Len()) * float64(opts.BikeRate))
	plan.DailyCost = int64(float64(ds.Len()) * perOrder)
	plan.MonthlyCost = plan.DailyCost * 30
	return plan, nil
}

// shiftShare moves the auto share by delta, keeping both shares within
// [1-cap, cap].
func shiftShare(share, delta, cap float64) float64 {
	share += delta
	if share > cap {
		share = cap
	}
	if share < 1-cap {
		share = 1 - cap
	}
	return share
}

// avgNearestDistKm averages the distance from each point to its nearest
// warehouse.
func avgNearestDistKm(points, warehouses []geo.Point) float64 {
	if len(points) == 0 || len(warehouses) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range points {
		best := geo.DistanceKm(p, warehouses[0])
		for _, w := range warehouses[1:] {
			if d := geo.DistanceKm(p, w); d < best {
				best = d
			}
		}
		total += best
	}
	return total / float64(len(points))
}

// MixNames returns the known presets in a stable order.
func MixNames() []MixName {
	names := make([]MixName, 0, len(mixShares))
	for n := range mixShares {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
