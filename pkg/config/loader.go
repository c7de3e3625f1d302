package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "LASTMILE_"
	configEnvVar = "CONFIG_PATH"
)

// Loader loads configuration from several sources.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/lastmile/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithConfigPaths sets the config file search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load loads configuration with the following priority:
// 1. Defaults (lowest)
// 2. Config file (yaml)
// 3. Environment variables (highest)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The config file is optional.
	if err := l.loadConfigFile(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDefaults loads the built-in default values. The placement and fleet
// defaults mirror the production calibration for a dense metro area.
func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "lastmile-planner",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,
		"app.seed":        42,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "lastmile",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "lastmile-planner",
		"tracing.sample_rate":  0.1,

		// Cache
		"cache.enabled":     false,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": 30 * time.Minute,
		"cache.max_entries": 1000,

		// Input
		"input.orders_path":     "orders.csv",
		"input.boundaries_path": "",

		// Planning
		"planning.strategy":              "dbscan",
		"planning.grid_cell_deg":         0.005,
		"planning.min_cluster_size":      50,
		"planning.dbscan_eps":            0.15,
		"planning.hub_count":             5,
		"planning.hub_density_weight":    0.7,
		"planning.hub_distance_weight":   0.3,
		"planning.hub_reference_dist_km": 10.0,
		"planning.coverage_radius_km":    3.0,
		// Wider coverage always allows fewer feeders. The trailing entry with
		// max_radius_km 0 is the open-ended tier.
		"planning.feeder_tiers": []map[string]any{
			{"max_radius_km": 2.0, "max_feeders": 6},
			{"max_radius_km": 3.0, "max_feeders": 4},
			{"max_radius_km": 5.0, "max_feeders": 2},
			{"max_radius_km": 0.0, "max_feeders": 1},
		},
		"planning.pincode_tiers": []map[string]any{
			{"max_radius_km": 2.0, "max_feeders": 35},
			{"max_radius_km": 3.0, "max_feeders": 25},
			{"max_radius_km": 0.0, "max_feeders": 15},
		},
		"planning.min_separation_km":   2.0,
		"planning.grid_separation_km":  1.5,
		"planning.max_hub_distance_km": 10.0,
		"planning.overlap_reject_frac": 0.3,
		"planning.gap_fill_cell_deg":   0.01,
		"planning.gap_fill_min_orders": 10,
		"planning.sweep_workers":       4,

		// Fleet
		"fleet.pickup_cluster_radius_km": 6.0,
		"fleet.anchor_customers":         []string{"herbalife", "trent"},
		"fleet.scaling_threshold":        500,
		"fleet.max_vehicles_per_hub":     3,
		"fleet.max_trips_per_day":        4,
		"fleet.relay_max_stops":          4,
		"fleet.relay_max_dist_km":        80.0,
		"fleet.relay_max_minutes":        120.0,
		"fleet.relay_trips_per_day":      2,
		"fleet.relay_speed_kmh":          40.0,
		"fleet.last_mile_mix":            "balanced",
		"fleet.bike_shift_dist_km":       3.0,
		"fleet.auto_shift_dist_km":       7.0,
		"fleet.mix_shift_step":           0.2,
		"fleet.mix_share_cap":            0.8,

		// Cost (rupees)
		"cost.main_rent":                  35000,
		"cost.aux_rent":                   15000,
		"cost.main_staff_cost":            25000,
		"cost.main_staff_count":           2,
		"cost.aux_staff_cost":             12000,
		"cost.aux_staff_count":            1,
		"cost.main_warehouses":            5,
		"cost.first_mile_orders_per_trip": 40,
		"cost.first_mile_trip_cost":       1350,
		"cost.middle_mile_trips_per_aux":  2,
		"cost.middle_mile_trip_cost":      1350,
		"cost.last_mile_orders_per_trip":  20,
		"cost.last_mile_trip_cost":        900,
		"cost.last_mile_bike_rate":        25,
		"cost.last_mile_auto_rate":        35,
		"cost.operating_days":             30,

		// Report
		"report.enabled":      true,
		"report.output_dir":   "reports",
		"report.company_name": "Lastmile Networks",
		"report.currency":     "INR",
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv loads configuration from environment variables, mapping keys that
// contain underscores in their names through envKeyMappings.
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		if mappedKey, ok := envKeyMappings[key]; ok {
			key = mappedKey
		} else {
			key = strings.ReplaceAll(key, "_", ".")
		}

		if isSliceField(key) {
			return key, splitAndTrim(value)
		}

		return key, value
	}), nil)
}

// envKeyMappings maps environment variable keys to config keys for fields
// whose names themselves contain underscores.
var envKeyMappings = map[string]string{
	// Log
	"log_level":       "log.level",
	"log_format":      "log.format",
	"log_output":      "log.output",
	"log_file_path":   "log.file_path",
	"log_max_size":    "log.max_size",
	"log_max_backups": "log.max_backups",
	"log_max_age":     "log.max_age",
	"log_compress":    "log.compress",

	// Metrics
	"metrics_enabled":   "metrics.enabled",
	"metrics_port":      "metrics.port",
	"metrics_path":      "metrics.path",
	"metrics_namespace": "metrics.namespace",
	"metrics_subsystem": "metrics.subsystem",

	// Tracing
	"tracing_enabled":      "tracing.enabled",
	"tracing_endpoint":     "tracing.endpoint",
	"tracing_service_name": "tracing.service_name",
	"tracing_sample_rate":  "tracing.sample_rate",

	// Cache
	"cache_enabled":     "cache.enabled",
	"cache_driver":      "cache.driver",
	"cache_host":        "cache.host",
	"cache_port":        "cache.port",
	"cache_password":    "cache.password",
	"cache_db":          "cache.db",
	"cache_default_ttl": "cache.default_ttl",
	"cache_max_entries": "cache.max_entries",

	// Input
	"input_orders_path":     "input.orders_path",
	"input_boundaries_path": "input.boundaries_path",

	// Planning
	"planning_strategy":              "planning.strategy",
	"planning_grid_cell_deg":         "planning.grid_cell_deg",
	"planning_min_cluster_size":      "planning.min_cluster_size",
	"planning_dbscan_eps":            "planning.dbscan_eps",
	"planning_hub_count":             "planning.hub_count",
	"planning_hub_density_weight":    "planning.hub_density_weight",
	"planning_hub_distance_weight":   "planning.hub_distance_weight",
	"planning_hub_reference_dist_km": "planning.hub_reference_dist_km",
	"planning_coverage_radius_km":    "planning.coverage_radius_km",
	"planning_min_separation_km":     "planning.min_separation_km",
	"planning_grid_separation_km":    "planning.grid_separation_km",
	"planning_max_hub_distance_km":   "planning.max_hub_distance_km",
	"planning_overlap_reject_frac":   "planning.overlap_reject_frac",
	"planning_gap_fill_cell_deg":     "planning.gap_fill_cell_deg",
	"planning_gap_fill_min_orders":   "planning.gap_fill_min_orders",
	"planning_sweep_workers":         "planning.sweep_workers",

	// Fleet
	"fleet_pickup_cluster_radius_km": "fleet.pickup_cluster_radius_km",
	"fleet_anchor_customers":         "fleet.anchor_customers",
	"fleet_scaling_threshold":        "fleet.scaling_threshold",
	"fleet_max_vehicles_per_hub":     "fleet.max_vehicles_per_hub",
	"fleet_max_trips_per_day":        "fleet.max_trips_per_day",
	"fleet_relay_max_stops":          "fleet.relay_max_stops",
	"fleet_relay_max_dist_km":        "fleet.relay_max_dist_km",
	"fleet_relay_max_minutes":        "fleet.relay_max_minutes",
	"fleet_relay_trips_per_day":      "fleet.relay_trips_per_day",
	"fleet_relay_speed_kmh":          "fleet.relay_speed_kmh",
	"fleet_last_mile_mix":            "fleet.last_mile_mix",
	"fleet_bike_shift_dist_km":       "fleet.bike_shift_dist_km",
	"fleet_auto_shift_dist_km":       "fleet.auto_shift_dist_km",
	"fleet_mix_shift_step":           "fleet.mix_shift_step",
	"fleet_mix_share_cap":            "fleet.mix_share_cap",

	// Cost
	"cost_main_rent":                  "cost.main_rent",
	"cost_aux_rent":                   "cost.aux_rent",
	"cost_main_staff_cost":            "cost.main_staff_cost",
	"cost_main_staff_count":           "cost.main_staff_count",
	"cost_aux_staff_cost":             "cost.aux_staff_cost",
	"cost_aux_staff_count":            "cost.aux_staff_count",
	"cost_main_warehouses":            "cost.main_warehouses",
	"cost_first_mile_orders_per_trip": "cost.first_mile_orders_per_trip",
	"cost_first_mile_trip_cost":       "cost.first_mile_trip_cost",
	"cost_middle_mile_trips_per_aux":  "cost.middle_mile_trips_per_aux",
	"cost_middle_mile_trip_cost":      "cost.middle_mile_trip_cost",
	"cost_last_mile_orders_per_trip":  "cost.last_mile_orders_per_trip",
	"cost_last_mile_trip_cost":        "cost.last_mile_trip_cost",
	"cost_last_mile_bike_rate":        "cost.last_mile_bike_rate",
	"cost_last_mile_auto_rate":        "cost.last_mile_auto_rate",
	"cost_operating_days":             "cost.operating_days",

	// Report
	"report_enabled":      "report.enabled",
	"report_output_dir":   "report.output_dir",
	"report_company_name": "report.company_name",
	"report_currency":     "report.currency",
}

// sliceFields are keys parsed as comma-separated lists.
var sliceFields = map[string]bool{
	"fleet.anchor_customers": true,
}

func isSliceField(key string) bool {
	return sliceFields[key]
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// MustLoad loads the configuration or panics.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load loads the configuration with default loader settings.
func Load() (*Config, error) {
	return NewLoader().Load()
}

// Default returns the built-in default configuration without touching the
// filesystem or environment. Useful for tests and library callers.
func Default() *Config {
	l := &Loader{k: koanf.New(".")}
	if err := l.loadDefaults(); err != nil {
		panic(fmt.Sprintf("failed to load default config: %v", err))
	}
	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}
