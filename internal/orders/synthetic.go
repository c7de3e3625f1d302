package orders

import (
	"fmt"
	"math/rand"
	"time"

	"lastmile/pkg/geo"
)

// SyntheticOptions controls generated test datasets.
type SyntheticOptions struct {
	Count   int
	Center  geo.Point
	StdDev  float64 // degrees
	Seed    int64
	Pickups int // number of distinct pickup locations, min 1
}

// GenerateSynthetic produces a dataset of orders normally distributed around
// a center point. Deterministic for a fixed seed.
func GenerateSynthetic(opts SyntheticOptions) *Dataset {
	if opts.Count <= 0 {
		return &Dataset{}
	}
	if opts.Pickups <= 0 {
		opts.Pickups = 3
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	pickups := make([]geo.Point, opts.Pickups)
	for i := range pickups {
		pickups[i] = geo.Point{
			Lat: opts.Center.Lat + rng.NormFloat64()*opts.StdDev,
			Lon: opts.Center.Lon + rng.NormFloat64()*opts.StdDev,
		}
	}

	classes := AllPackageClasses()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	ds := &Dataset{Orders: make([]Order, 0, opts.Count)}
	for i := 0; i < opts.Count; i++ {
		pickupIdx := rng.Intn(opts.Pickups)
		ds.Orders = append(ds.Orders, Order{
			ID:        fmt.Sprintf("ord-%06d", i+1),
			Customer:  fmt.Sprintf("customer-%d", pickupIdx+1),
			Pickup:    fmt.Sprintf("pickup-%d", pickupIdx+1),
			PickupLoc: pickups[pickupIdx],
			DropLoc: geo.Point{
				Lat: opts.Center.Lat + rng.NormFloat64()*opts.StdDev,
				Lon: opts.Center.Lon + rng.NormFloat64()*opts.StdDev,
			},
			Package:   classes[rng.Intn(len(classes))],
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	ds.SortCanonical()
	return ds
}
