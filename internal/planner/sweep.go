package planner

import (
	"context"
	"math"
	"sort"
	"sync"

	"lastmile/internal/cluster"
	"lastmile/internal/costmodel"
	"lastmile/internal/orders"
	"lastmile/internal/placement"
	"lastmile/pkg/geo"
)

// SweepResult is the outcome of planning one coverage radius.
type SweepResult struct {
	RadiusKm     float64             `json:"radius_km"`
	FeederCount  int                 `json:"feeder_count"`
	Uncovered    int                 `json:"uncovered_orders"`
	Costs        costmodel.Breakdown `json:"costs"`
	CostPerOrder string              `json:"cost_per_order"`
}

// SweepRadii plans the feeder network at several coverage radii in parallel
// and reports how feeder count and cost respond. Clustering and hub
// placement run once; only the radius-dependent placement is swept.
//
// Results come back sorted by radius regardless of worker completion order.
func (p *Planner) SweepRadii(ctx context.Context, ds *orders.Dataset, radii []float64) ([]SweepResult, error) {
	if ds.IsEmpty() || len(radii) == 0 {
		return nil, nil
	}

	points := ds.DropPoints()
	clusters, _, err := p.runClustering(ctx, p.cfg.Planning.Strategy, points)
	if err != nil {
		return nil, err
	}
	hubs := placement.PlaceHubs(points, placement.HubOptions{
		Count:           p.cfg.Planning.HubCount,
		DensityWeight:   p.cfg.Planning.HubDensityWeight,
		DistanceWeight:  p.cfg.Planning.HubDistanceWeight,
		ReferenceDistKm: p.cfg.Planning.HubReferenceDistKm,
	})

	workers := p.cfg.Planning.SweepWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(radii) {
		workers = len(radii)
	}

	dailyOrders := int(math.Round(ds.DailyVolume()))
	rates := costmodel.FromConfig(p.cfg.Cost)

	jobs := make(chan float64)
	results := make(chan SweepResult, len(radii))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for radius := range jobs {
				results <- p.sweepOne(points, clusters, hubs, radius, dailyOrders, rates)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, r := range radii {
			select {
			case jobs <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]SweepResult, 0, len(radii))
	for r := range results {
		out = append(out, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RadiusKm < out[j].RadiusKm })
	return out, nil
}

func (p *Planner) sweepOne(points []geo.Point, clusters []cluster.Cluster, hubs []placement.Hub, radiusKm float64, dailyOrders int, rates costmodel.Rates) SweepResult {
	feeders := placement.PlaceFeedersDensity(clusters, hubs, placement.FeederOptions{
		CoverageRadiusKm: radiusKm,
		Tiers:            p.cfg.Planning.FeederTiers,
		MinSeparationKm:  p.cfg.Planning.MinSeparationKm,
		MaxHubDistanceKm: p.cfg.Planning.MaxHubDistanceKm,
		Source:           placement.SourceDensity,
	})
	feeders = placement.FillCoverageGaps(points, feeders, hubs, placement.GapFillOptions{
		UncoveredRadiusKm: radiusKm,
		CellDeg:           p.cfg.Planning.GapFillCellDeg,
		MinOrders:         p.cfg.Planning.GapFillMinOrders,
		MinSeparationKm:   p.cfg.Planning.GridSeparationKm,
		MaxHubDistanceKm:  p.cfg.Planning.MaxHubDistanceKm,
	})

	costs := costmodel.Compute(costmodel.Network{
		MainWarehouses: p.cfg.Cost.MainWarehouses,
		AuxWarehouses:  len(feeders),
		DailyOrders:    dailyOrders,
	}, rates)

	uncovered := 0
	for _, pt := range points {
		covered := false
		for _, f := range feeders {
			if geo.DistanceKm(pt, f.Location) <= radiusKm {
				covered = true
				break
			}
		}
		if !covered {
			uncovered++
		}
	}

	return SweepResult{
		RadiusKm:     radiusKm,
		FeederCount:  len(feeders),
		Uncovered:    uncovered,
		Costs:        costs,
		CostPerOrder: costs.CostPerOrder.String(),
	}
}
