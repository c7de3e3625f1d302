// Package main is the entry point for the lastmile network planner.
//
// The planner reads an order dataset, builds a warehouse network plan
// (clustering, hub and feeder placement, vehicle allocation, monthly cost
// model) and optionally writes an Excel report.
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: LASTMILE_)
//  2. Config files (config.yaml, config/config.yaml, /etc/lastmile/config.yaml)
//  3. Default values
//
// Key options (environment variable format):
//
//	LASTMILE_INPUT_ORDERS_PATH         - Orders CSV path (default: orders.csv)
//	LASTMILE_INPUT_BOUNDARIES_PATH     - GeoJSON pincode polygons, optional
//	LASTMILE_PLANNING_STRATEGY         - grid, dbscan or pincode
//	LASTMILE_PLANNING_COVERAGE_RADIUS_KM - Feeder coverage radius
//	LASTMILE_FLEET_LAST_MILE_MIX       - bike_heavy, balanced or auto_heavy
//	LASTMILE_CACHE_ENABLED             - Enable plan caching (memory or redis)
//	LASTMILE_REPORT_ENABLED            - Write the Excel workbook
//	LASTMILE_LOG_LEVEL                 - debug, info, warn, error
//
// # Observability
//
// When metrics are enabled a Prometheus endpoint is served on the metrics
// port alongside a /health probe. Tracing exports OTLP spans when an
// endpoint is configured.
package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lastmile/internal/boundary"
	"lastmile/internal/ingest"
	"lastmile/internal/planner"
	"lastmile/internal/report"
	"lastmile/pkg/cache"
	"lastmile/pkg/config"
	"lastmile/pkg/geo"
	"lastmile/pkg/logger"
	"lastmile/pkg/metrics"
	"lastmile/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("invalid config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	opts := []planner.Option{}
	if m != nil {
		opts = append(opts, planner.WithMetrics(m))
	}
	if cfg.Cache.Enabled {
		planCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("cache unavailable, planning without it", "error", err)
		} else {
			defer planCache.Close()
			opts = append(opts, planner.WithCache(planCache))
		}
	}

	p, err := planner.New(cfg, opts...)
	if err != nil {
		logger.Log.Error("planner setup failed", "error", err)
		os.Exit(1)
	}

	ds, err := ingest.ReadFile(cfg.Input.OrdersPath)
	if err != nil {
		logger.Log.Error("failed to read orders", "path", cfg.Input.OrdersPath, "error", err)
		os.Exit(1)
	}
	logger.Log.Info("orders loaded",
		"path", cfg.Input.OrdersPath, "orders", ds.Len(), "skipped_rows", ds.SkippedRows)
	if m != nil {
		m.RecordDatasetSize("csv", ds.Len())
	}

	// Pincode boundaries are optional; the pincode strategy degrades to
	// density placement without them.
	var boundaries map[string]geo.Polygon
	if cfg.Input.BoundariesPath != "" {
		boundaries, err = boundary.Load(cfg.Input.BoundariesPath)
		if err != nil {
			logger.Log.Warn("failed to load boundaries",
				"path", cfg.Input.BoundariesPath, "error", err)
		} else {
			logger.Log.Info("boundaries loaded", "count", len(boundaries))
		}
	}

	plan, err := p.BuildPlan(ctx, ds, boundaries)
	if err != nil {
		logger.Log.Error("planning failed", "error", err)
		os.Exit(1)
	}

	log := logger.WithRunID(plan.RunID)
	log.Info("network plan ready",
		"strategy", plan.Strategy,
		"hubs", len(plan.Hubs),
		"feeders", len(plan.Feeders),
		"uncovered_orders", plan.Stats.UncoveredOrders,
		"monthly_cost", plan.Costs.Total.StringFixed(2),
		"cost_per_order", plan.Costs.CostPerOrder.StringFixed(2))
	for _, warning := range plan.Warnings {
		log.Warn("plan warning", "warning", warning)
	}

	if cfg.Report.Enabled {
		writer := report.NewWriter(cfg.Report)
		path, err := writer.Write(plan)
		if err != nil {
			log.Error("report write failed", "error", err)
			os.Exit(1)
		}
		jsonPath, err := writer.WriteJSON(plan)
		if err != nil {
			log.Error("plan export failed", "error", err)
			os.Exit(1)
		}
		log.Info("report written", "workbook", path, "plan", jsonPath)
	}
}
