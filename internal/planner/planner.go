// Package planner runs the full network planning pipeline: clustering, hub
// and feeder placement, fleet allocation and the monthly cost model.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"lastmile/internal/cluster"
	"lastmile/internal/costmodel"
	"lastmile/internal/fleet"
	"lastmile/internal/orders"
	"lastmile/internal/placement"
	"lastmile/pkg/apperror"
	"lastmile/pkg/cache"
	"lastmile/pkg/config"
	"lastmile/pkg/geo"
	"lastmile/pkg/logger"
	"lastmile/pkg/metrics"
	"lastmile/pkg/telemetry"
)

// Planner computes network plans for order datasets.
type Planner struct {
	cfg     *config.Config
	policy  *fleet.Policy
	cache   cache.Cache
	metrics *metrics.Metrics
}

// Option configures a Planner.
type Option func(*Planner)

// WithCache attaches a plan cache.
func WithCache(c cache.Cache) Option {
	return func(p *Planner) { p.cache = c }
}

// WithMetrics attaches a metrics container.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// WithPolicy overrides the vehicle capability table.
func WithPolicy(policy *fleet.Policy) Option {
	return func(p *Planner) { p.policy = policy }
}

// New creates a planner. The vehicle policy is validated here so a broken
// capability table fails before any dataset is touched.
func New(cfg *config.Config, opts ...Option) (*Planner, error) {
	p := &Planner{
		cfg:    cfg,
		policy: fleet.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.policy.Validate(); err != nil {
		return nil, err
	}
	if !fleet.ValidMix(fleet.MixName(cfg.Fleet.LastMileMix)) {
		return nil, apperror.New(apperror.CodeInvalidFleetMix, "unknown fleet mix").
			WithDetails("mix", cfg.Fleet.LastMileMix)
	}
	return p, nil
}

// Stats summarizes the dataset and pipeline outcome of a run.
type Stats struct {
	OrderCount      int     `json:"order_count"`
	SkippedRows     int     `json:"skipped_rows"`
	DailyOrders     int     `json:"daily_orders"`
	ClusterCount    int     `json:"cluster_count"`
	UncoveredOrders int     `json:"uncovered_orders"`
	ElapsedMs       float64 `json:"elapsed_ms"`
	CacheHit        bool    `json:"cache_hit"`
}

// Plan is the complete output of one planning run.
type Plan struct {
	RunID            string    `json:"run_id"`
	GeneratedAt      time.Time `json:"generated_at"`
	Strategy         string    `json:"strategy"`
	CoverageRadiusKm float64   `json:"coverage_radius_km"`

	Clusters []cluster.Cluster  `json:"clusters,omitempty"`
	Hubs     []placement.Hub    `json:"hubs"`
	Feeders  []placement.Feeder `json:"feeders"`

	FirstMile  *fleet.FirstMilePlan  `json:"first_mile"`
	MiddleMile *fleet.MiddleMilePlan `json:"middle_mile"`
	Relays     *fleet.RelayPlan      `json:"relays"`
	LastMile   *fleet.LastMilePlan   `json:"last_mile"`

	Costs      costmodel.Breakdown    `json:"costs"`
	Projection []costmodel.ScalePoint `json:"projection"`

	Warnings []string `json:"warnings,omitempty"`
	Stats    Stats    `json:"stats"`
}

// FeedersBySource counts placed feeders per placement pass.
func (p *Plan) FeedersBySource() map[string]int {
	out := make(map[string]int)
	for _, f := range p.Feeders {
		out[string(f.Source)]++
	}
	return out
}

// BuildPlan runs the full pipeline for a dataset. Boundaries are optional;
// they are only consulted by the pincode strategy. An empty dataset yields
// an empty plan with zero cost, not an error.
func (p *Planner) BuildPlan(ctx context.Context, ds *orders.Dataset, boundaries map[string]geo.Polygon) (*Plan, error) {
	started := time.Now()
	strategy := p.cfg.Planning.Strategy

	ctx, span := telemetry.StartSpan(ctx, "planner.BuildPlan")
	defer span.End()

	if v := ds.Validate(); !v.IsValid() {
		telemetry.SetError(ctx, v.AsError())
		p.recordRun(strategy, false, started)
		return nil, v.AsError()
	}

	plan := &Plan{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		Strategy:         strategy,
		CoverageRadiusKm: p.cfg.Planning.CoverageRadiusKm,
	}
	log := logger.WithRunID(plan.RunID)

	if ds.IsEmpty() {
		log.Info("empty dataset, returning empty plan")
		plan.FirstMile = &fleet.FirstMilePlan{}
		plan.MiddleMile = &fleet.MiddleMilePlan{}
		plan.Relays = &fleet.RelayPlan{}
		plan.LastMile = &fleet.LastMilePlan{Mix: fleet.MixName(p.cfg.Fleet.LastMileMix)}
		plan.Costs = costmodel.Compute(costmodel.Network{}, costmodel.FromConfig(p.cfg.Cost))
		plan.Stats = Stats{ElapsedMs: float64(time.Since(started).Microseconds()) / 1000}
		p.recordRun(strategy, true, started)
		return plan, nil
	}

	datasetHash := p.datasetHash(ds)
	paramsHash := p.paramsHash()
	telemetry.SetAttributes(ctx, telemetry.DatasetAttributes(ds.Len(), ds.SkippedRows, datasetHash)...)

	if cached, ok := p.cachedPlan(ctx, strategy, datasetHash, paramsHash); ok {
		log.Info("plan served from cache", "dataset_hash", datasetHash)
		cached.Stats.CacheHit = true
		p.recordRun(strategy, true, started)
		return cached, nil
	}

	points := ds.DropPoints()

	clusters, warnings, err := p.runClustering(ctx, strategy, points)
	if err != nil {
		telemetry.SetError(ctx, err)
		p.recordRun(strategy, false, started)
		return nil, err
	}
	plan.Warnings = warnings
	plan.Clusters = clusters
	log.Info("clustering complete", "stage", "clustering",
		"strategy", strategy, "clusters", len(clusters))

	hubs := p.runStage("hubs", func() []placement.Hub {
		return placement.PlaceHubs(points, placement.HubOptions{
			Count:           p.cfg.Planning.HubCount,
			DensityWeight:   p.cfg.Planning.HubDensityWeight,
			DistanceWeight:  p.cfg.Planning.HubDistanceWeight,
			ReferenceDistKm: p.cfg.Planning.HubReferenceDistKm,
		})
	})
	plan.Hubs = hubs
	log.Info("hubs placed", "stage", "hubs", "count", len(hubs))

	feeders, feederWarnings := p.runPlacement(strategy, clusters, points, boundaries, hubs)
	plan.Warnings = append(plan.Warnings, feederWarnings...)

	feeders = placement.FillCoverageGaps(points, feeders, hubs, placement.GapFillOptions{
		UncoveredRadiusKm: p.cfg.Planning.CoverageRadiusKm,
		CellDeg:           p.cfg.Planning.GapFillCellDeg,
		MinOrders:         p.cfg.Planning.GapFillMinOrders,
		MinSeparationKm:   p.cfg.Planning.GridSeparationKm,
		MaxHubDistanceKm:  p.cfg.Planning.MaxHubDistanceKm,
	})
	plan.Feeders = feeders
	log.Info("feeders placed", "stage", "feeders",
		"count", len(feeders), "by_source", plan.FeedersBySource())

	plan.FirstMile = fleet.PlanFirstMile(ds, p.policy, fleet.FirstMileOptions{
		ClusterRadiusKm: p.cfg.Fleet.PickupClusterRadiusKm,
		TierPolicy:      orders.NewTierPolicy(p.cfg.Fleet.AnchorCustomers),
	})
	plan.MiddleMile = fleet.PlanMiddleMile(feeders, hubs, p.policy, fleet.MiddleMileOptions{
		ScalingThreshold:  p.cfg.Fleet.ScalingThreshold,
		MaxVehiclesPerHub: p.cfg.Fleet.MaxVehiclesPerHub,
		MaxTripsPerDay:    p.cfg.Fleet.MaxTripsPerDay,
	})
	plan.Relays = fleet.PlanHubRelays(hubs, p.policy, fleet.RelayOptions{
		MaxStops:    p.cfg.Fleet.RelayMaxStops,
		MaxDistKm:   p.cfg.Fleet.RelayMaxDistKm,
		MaxMinutes:  p.cfg.Fleet.RelayMaxMinutes,
		TripsPerDay: p.cfg.Fleet.RelayTripsPerDay,
		SpeedKmh:    p.cfg.Fleet.RelaySpeedKmh,
	})

	lastMile, err := fleet.PlanLastMile(ds, hubs, feeders, fleet.LastMileOptions{
		Mix:             fleet.MixName(p.cfg.Fleet.LastMileMix),
		BikeRate:        p.cfg.Cost.LastMileBikeRate,
		AutoRate:        p.cfg.Cost.LastMileAutoRate,
		BikeShiftDistKm: p.cfg.Fleet.BikeShiftDistKm,
		AutoShiftDistKm: p.cfg.Fleet.AutoShiftDistKm,
		ShiftStep:       p.cfg.Fleet.MixShiftStep,
		ShareCap:        p.cfg.Fleet.MixShareCap,
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		p.recordRun(strategy, false, started)
		return nil, err
	}
	plan.LastMile = lastMile
	log.Info("fleet allocated", "stage", "fleet",
		"first_mile_routes", len(plan.FirstMile.Routes),
		"middle_mile_lanes", len(plan.MiddleMile.Lanes),
		"relay_routes", len(plan.Relays.Routes))

	dailyOrders := int(math.Round(ds.DailyVolume()))
	rates := costmodel.FromConfig(p.cfg.Cost)
	plan.Costs = costmodel.Compute(costmodel.Network{
		MainWarehouses: p.cfg.Cost.MainWarehouses,
		AuxWarehouses:  len(feeders),
		DailyOrders:    dailyOrders,
	}, rates)

	monthly := dailyOrders * rates.DaysPerMonth
	plan.Projection = costmodel.ProjectScale(p.cfg.Cost.MainWarehouses,
		[]int{monthly, monthly * 2, monthly * 4, monthly * 8}, rates)

	plan.Stats = Stats{
		OrderCount:      ds.Len(),
		SkippedRows:     ds.SkippedRows,
		DailyOrders:     dailyOrders,
		ClusterCount:    len(clusters),
		UncoveredOrders: p.countUncovered(points, feeders),
		ElapsedMs:       float64(time.Since(started).Microseconds()) / 1000,
	}

	telemetry.SetAttributes(ctx, telemetry.PlanAttributes(strategy,
		plan.CoverageRadiusKm, len(hubs), len(feeders))...)
	if p.metrics != nil {
		p.metrics.RecordDatasetSize("plan", ds.Len())
		p.metrics.RecordPlacement(len(hubs), plan.FeedersBySource(), plan.CoverageRadiusKm)
		cpo, _ := plan.Costs.CostPerOrder.Float64()
		p.metrics.CostPerOrder.Set(cpo)
	}

	p.storePlan(ctx, strategy, datasetHash, paramsHash, plan)
	p.recordRun(strategy, true, started)
	log.Info("plan complete",
		"hubs", len(hubs), "feeders", len(feeders),
		"cost_per_order", plan.Costs.CostPerOrder.String(),
		"elapsed_ms", plan.Stats.ElapsedMs)
	return plan, nil
}

// runClustering executes the configured clustering pass. Soft failures
// (too few points for density estimation) degrade to grid clustering and
// surface as plan warnings rather than errors.
func (p *Planner) runClustering(ctx context.Context, strategy string, points []geo.Point) ([]cluster.Cluster, []string, error) {
	var warnings []string

	gridClusters := func() []cluster.Cluster {
		return cluster.Grid(points, cluster.GridOptions{
			CellDeg:        p.cfg.Planning.GridCellDeg,
			MinClusterSize: p.cfg.Planning.MinClusterSize,
		})
	}

	switch strategy {
	case "dbscan":
		clusters, err := cluster.DBSCAN(ctx, points, cluster.DBSCANOptions{
			Eps:            p.cfg.Planning.DBSCANEps,
			MinClusterSize: p.cfg.Planning.MinClusterSize,
		})
		if err != nil {
			if !apperror.IsSoft(err) {
				return nil, nil, err
			}
			logger.Warn("density clustering degraded to grid", "reason", err.Error())
			warnings = append(warnings, err.Error())
			return gridClusters(), warnings, nil
		}
		return clusters, warnings, nil
	default:
		// grid, and the placement side of pincode still needs density
		// clusters for its fallback path
		return gridClusters(), warnings, nil
	}
}

// runPlacement executes the configured feeder placement pass. The pincode
// strategy falls back to density placement when boundaries are missing.
func (p *Planner) runPlacement(strategy string, clusters []cluster.Cluster, points []geo.Point, boundaries map[string]geo.Polygon, hubs []placement.Hub) ([]placement.Feeder, []string) {
	var warnings []string

	if strategy == "pincode" {
		feeders, err := placement.PlaceFeedersPincode(points, boundaries, hubs, placement.PincodeOptions{
			CoverageRadiusKm:  p.cfg.Planning.CoverageRadiusKm,
			Tiers:             p.cfg.Planning.PincodeTiers,
			MaxHubDistanceKm:  p.cfg.Planning.MaxHubDistanceKm,
			OverlapRejectFrac: p.cfg.Planning.OverlapRejectFrac,
		})
		if err == nil {
			return feeders, warnings
		}
		if !apperror.IsSoft(err) {
			warnings = append(warnings, err.Error())
			return nil, warnings
		}
		logger.Warn("pincode placement degraded to density", "reason", err.Error())
		warnings = append(warnings, err.Error())
	}

	opts := placement.FeederOptions{
		CoverageRadiusKm: p.cfg.Planning.CoverageRadiusKm,
		Tiers:            p.cfg.Planning.FeederTiers,
		MinSeparationKm:  p.cfg.Planning.MinSeparationKm,
		MaxHubDistanceKm: p.cfg.Planning.MaxHubDistanceKm,
		Source:           placement.SourceDensity,
	}
	if strategy == "grid" {
		opts.MinSeparationKm = p.cfg.Planning.GridSeparationKm
		opts.Source = placement.SourceGrid
	}
	return placement.PlaceFeedersDensity(clusters, hubs, opts), warnings
}

func (p *Planner) runStage(stage string, fn func() []placement.Hub) []placement.Hub {
	if p.metrics == nil {
		return fn()
	}
	timer := metrics.NewTimer(p.metrics.StageDuration, stage)
	defer timer.ObserveDuration()
	return fn()
}

// countUncovered counts orders farther than the coverage radius from every
// feeder.
func (p *Planner) countUncovered(points []geo.Point, feeders []placement.Feeder) int {
	count := 0
	for _, pt := range points {
		covered := false
		for _, f := range feeders {
			if geo.DistanceKm(pt, f.Location) <= p.cfg.Planning.CoverageRadiusKm {
				covered = true
				break
			}
		}
		if !covered {
			count++
		}
	}
	return count
}

// datasetHash builds a deterministic hash over the canonical order list.
func (p *Planner) datasetHash(ds *orders.Dataset) string {
	var b strings.Builder
	for _, o := range ds.Orders {
		fmt.Fprintf(&b, "%s|%s|%.6f|%.6f|%s;",
			o.ID, o.Pickup, o.DropLoc.Lat, o.DropLoc.Lon, o.Package)
	}
	return cache.ShortHash([]byte(b.String()))
}

// paramsHash covers every planning knob that changes the plan output.
func (p *Planner) paramsHash() string {
	pl, fl, co := p.cfg.Planning, p.cfg.Fleet, p.cfg.Cost
	canonical := fmt.Sprintf("%+v|%+v|%+v", pl, fl, co)
	return cache.ShortHash([]byte(canonical))
}

func (p *Planner) cachedPlan(ctx context.Context, strategy, datasetHash, paramsHash string) (*Plan, bool) {
	if p.cache == nil {
		return nil, false
	}
	key := cache.BuildPlanKey(strategy, datasetHash, paramsHash)
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordCacheOp("get", "miss")
		}
		return nil, false
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		// Corrupt entry: drop it, recompute.
		_ = p.cache.Delete(ctx, key)
		return nil, false
	}
	if p.metrics != nil {
		p.metrics.RecordCacheOp("get", "hit")
	}
	return &plan, true
}

func (p *Planner) storePlan(ctx context.Context, strategy, datasetHash, paramsHash string, plan *Plan) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		logger.Warn("plan not cached", "error", err)
		return
	}
	key := cache.BuildPlanKey(strategy, datasetHash, paramsHash)
	if err := p.cache.Set(ctx, key, data, p.cfg.Cache.DefaultTTL); err != nil {
		logger.Warn("plan not cached", "error", err)
		if p.metrics != nil {
			p.metrics.RecordCacheOp("set", "error")
		}
		return
	}
	if p.metrics != nil {
		p.metrics.RecordCacheOp("set", "ok")
	}
}

func (p *Planner) recordRun(strategy string, success bool, started time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordPlanRun(strategy, success, time.Since(started))
}
