// Package metrics exposes Prometheus instrumentation for the planning
// pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metrics container.
type Metrics struct {
	// Planning pipeline
	PlanRunsTotal  *prometheus.CounterVec
	PlanDuration   *prometheus.HistogramVec
	StageDuration  *prometheus.HistogramVec
	DatasetOrders  *prometheus.HistogramVec
	HubsPlaced     prometheus.Gauge
	FeedersPlaced  *prometheus.GaugeVec
	CoverageRadius prometheus.Gauge
	CostPerOrder   prometheus.Gauge

	// Plan cache
	CacheOpsTotal *prometheus.CounterVec

	// Service info
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics registers and returns the metrics container.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		PlanRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_runs_total",
				Help:      "Total number of plan computations",
			},
			[]string{"strategy", "status"},
		),

		PlanDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_duration_seconds",
				Help:      "Duration of full plan computations",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"strategy"},
		),

		StageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of individual pipeline stages",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"stage"},
		),

		DatasetOrders: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dataset_orders",
				Help:      "Number of orders in processed datasets",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"source"},
		),

		HubsPlaced: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "hubs_placed",
				Help:      "Hubs placed by the last plan",
			},
		),

		FeedersPlaced: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "feeders_placed",
				Help:      "Feeders placed by the last plan",
			},
			[]string{"source"},
		),

		CoverageRadius: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coverage_radius_km",
				Help:      "Coverage radius of the last plan",
			},
		),

		CostPerOrder: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cost_per_order_rupees",
				Help:      "Cost per order of the last plan",
			},
		),

		CacheOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_ops_total",
				Help:      "Plan cache operations",
			},
			[]string{"op", "result"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics container.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("lastmile", "")
	}
	return defaultMetrics
}

// RecordPlanRun records the outcome of one full plan computation.
func (m *Metrics) RecordPlanRun(strategy string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	m.PlanRunsTotal.WithLabelValues(strategy, status).Inc()
	m.PlanDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordDatasetSize records the order count of a processed dataset.
func (m *Metrics) RecordDatasetSize(source string, orderCount int) {
	m.DatasetOrders.WithLabelValues(source).Observe(float64(orderCount))
}

// RecordPlacement records the network shape of the last plan.
func (m *Metrics) RecordPlacement(hubs int, feedersBySource map[string]int, radiusKm float64) {
	m.HubsPlaced.Set(float64(hubs))
	for source, count := range feedersBySource {
		m.FeedersPlaced.WithLabelValues(source).Set(float64(count))
	}
	m.CoverageRadius.Set(radiusKm)
}

// RecordCacheOp records a plan cache lookup or store.
func (m *Metrics) RecordCacheOp(op, result string) {
	m.CacheOpsTotal.WithLabelValues(op, result).Inc()
}

// SetServiceInfo sets the service info gauge.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer runs the HTTP server for metrics and health probes.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
