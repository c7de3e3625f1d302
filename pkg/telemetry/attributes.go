package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard span attribute keys.
const (
	// Dataset
	AttrDatasetOrders  = "dataset.orders"
	AttrDatasetSkipped = "dataset.skipped_rows"
	AttrDatasetHash    = "dataset.hash"

	// Planning
	AttrStrategy      = "plan.strategy"
	AttrRadiusKm      = "plan.coverage_radius_km"
	AttrHubs          = "plan.hubs"
	AttrFeeders       = "plan.feeders"
	AttrClusters      = "plan.clusters"
	AttrCacheHit      = "plan.cache_hit"
	AttrCostPerOrder  = "plan.cost_per_order"
	AttrMonthlyOrders = "plan.monthly_orders"

	// Validation
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// DatasetAttributes returns span attributes for an ingested dataset.
func DatasetAttributes(orderCount, skippedRows int, hash string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrDatasetOrders, orderCount),
		attribute.Int(AttrDatasetSkipped, skippedRows),
		attribute.String(AttrDatasetHash, hash),
	}
}

// PlanAttributes returns span attributes for a computed plan.
func PlanAttributes(strategy string, radiusKm float64, hubs, feeders int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStrategy, strategy),
		attribute.Float64(AttrRadiusKm, radiusKm),
		attribute.Int(AttrHubs, hubs),
		attribute.Int(AttrFeeders, feeders),
	}
}

// ValidationAttributes returns span attributes for a validation pass.
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
