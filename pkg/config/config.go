// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"lastmile/pkg/apperror"
)

// Config is the root configuration structure.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Cache    CacheConfig    `koanf:"cache"`
	Input    InputConfig    `koanf:"input"`
	Planning PlanningConfig `koanf:"planning"`
	Fleet    FleetConfig    `koanf:"fleet"`
	Cost     CostConfig     `koanf:"cost"`
	Report   ReportConfig   `koanf:"report"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
	Seed        int64  `koanf:"seed"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig holds plan cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // in-memory backend only
}

// Address returns the cache address.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InputConfig holds input file settings.
type InputConfig struct {
	OrdersPath     string `koanf:"orders_path"`
	BoundariesPath string `koanf:"boundaries_path"` // GeoJSON pincode polygons, optional
}

// FeederTier bounds the number of feeders allowed at a coverage radius.
// Tiers must be sorted by ascending MaxRadiusKm with strictly decreasing
// MaxFeeders: a wider coverage radius always means fewer feeders.
type FeederTier struct {
	MaxRadiusKm float64 `koanf:"max_radius_km"`
	MaxFeeders  int     `koanf:"max_feeders"`
}

// PlanningConfig holds clustering and placement parameters.
type PlanningConfig struct {
	Strategy       string  `koanf:"strategy"` // grid, dbscan, pincode
	GridCellDeg    float64 `koanf:"grid_cell_deg"`
	MinClusterSize int     `koanf:"min_cluster_size"`
	DBSCANEps      float64 `koanf:"dbscan_eps"` // in standardized coordinate space

	HubCount           int     `koanf:"hub_count"`
	HubDensityWeight   float64 `koanf:"hub_density_weight"`
	HubDistanceWeight  float64 `koanf:"hub_distance_weight"`
	HubReferenceDistKm float64 `koanf:"hub_reference_dist_km"`

	CoverageRadiusKm  float64      `koanf:"coverage_radius_km"`
	FeederTiers       []FeederTier `koanf:"feeder_tiers"`
	PincodeTiers      []FeederTier `koanf:"pincode_tiers"`
	MinSeparationKm   float64      `koanf:"min_separation_km"`
	GridSeparationKm  float64      `koanf:"grid_separation_km"`
	MaxHubDistanceKm  float64      `koanf:"max_hub_distance_km"`
	OverlapRejectFrac float64      `koanf:"overlap_reject_frac"`
	GapFillCellDeg    float64      `koanf:"gap_fill_cell_deg"`
	GapFillMinOrders  int          `koanf:"gap_fill_min_orders"`
	SweepWorkers      int          `koanf:"sweep_workers"`
}

// FleetConfig holds vehicle allocation parameters.
type FleetConfig struct {
	PickupClusterRadiusKm float64  `koanf:"pickup_cluster_radius_km"`
	AnchorCustomers       []string `koanf:"anchor_customers"` // customer name substrings treated as anchor tier

	ScalingThreshold  int `koanf:"scaling_threshold"` // orders per extra middle-mile vehicle
	MaxVehiclesPerHub int `koanf:"max_vehicles_per_hub"`
	MaxTripsPerDay    int `koanf:"max_trips_per_day"`

	RelayMaxStops    int     `koanf:"relay_max_stops"`
	RelayMaxDistKm   float64 `koanf:"relay_max_dist_km"`
	RelayMaxMinutes  float64 `koanf:"relay_max_minutes"`
	RelayTripsPerDay int     `koanf:"relay_trips_per_day"`
	RelaySpeedKmh    float64 `koanf:"relay_speed_kmh"`

	LastMileMix     string  `koanf:"last_mile_mix"` // auto_heavy, balanced, bike_heavy
	BikeShiftDistKm float64 `koanf:"bike_shift_dist_km"`
	AutoShiftDistKm float64 `koanf:"auto_shift_dist_km"`
	MixShiftStep    float64 `koanf:"mix_shift_step"`
	MixShareCap     float64 `koanf:"mix_share_cap"`
}

// CostConfig holds the monthly cost model rates (rupees).
type CostConfig struct {
	MainRent       int64 `koanf:"main_rent"`
	AuxRent        int64 `koanf:"aux_rent"`
	MainStaffCost  int64 `koanf:"main_staff_cost"`
	MainStaffCount int   `koanf:"main_staff_count"`
	AuxStaffCost   int64 `koanf:"aux_staff_cost"`
	AuxStaffCount  int   `koanf:"aux_staff_count"`
	MainWarehouses int   `koanf:"main_warehouses"`

	FirstMileOrdersPerTrip int   `koanf:"first_mile_orders_per_trip"`
	FirstMileTripCost      int64 `koanf:"first_mile_trip_cost"`
	MiddleMileTripsPerAux  int   `koanf:"middle_mile_trips_per_aux"`
	MiddleMileTripCost     int64 `koanf:"middle_mile_trip_cost"`
	LastMileOrdersPerTrip  int   `koanf:"last_mile_orders_per_trip"`
	LastMileTripCost       int64 `koanf:"last_mile_trip_cost"`

	// Per-order delivery rates for the last-mile fleet mix.
	LastMileBikeRate int64 `koanf:"last_mile_bike_rate"`
	LastMileAutoRate int64 `koanf:"last_mile_auto_rate"`

	OperatingDays int `koanf:"operating_days"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	Enabled     bool   `koanf:"enabled"`
	OutputDir   string `koanf:"output_dir"`
	CompanyName string `koanf:"company_name"`
	Currency    string `koanf:"currency"`
}

// Validate checks the configuration, including all placement and fleet
// policy tables. Policy violations are fatal before any computation starts.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	validStrategies := map[string]bool{"grid": true, "dbscan": true, "pincode": true}
	if !validStrategies[c.Planning.Strategy] {
		errs = append(errs, fmt.Sprintf("planning.strategy must be one of: grid, dbscan, pincode, got %s", c.Planning.Strategy))
	}
	if c.Planning.GridCellDeg <= 0 {
		errs = append(errs, "planning.grid_cell_deg must be positive")
	}
	if c.Planning.MinClusterSize <= 0 {
		errs = append(errs, "planning.min_cluster_size must be positive")
	}
	if c.Planning.HubCount <= 0 {
		errs = append(errs, "planning.hub_count must be positive")
	}
	if c.Planning.CoverageRadiusKm <= 0 {
		errs = append(errs, "planning.coverage_radius_km must be positive")
	}
	if c.Planning.MinSeparationKm <= 0 {
		errs = append(errs, "planning.min_separation_km must be positive")
	}

	if err := validateTiers("planning.feeder_tiers", c.Planning.FeederTiers); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTiers("planning.pincode_tiers", c.Planning.PincodeTiers); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Fleet.ScalingThreshold <= 0 {
		errs = append(errs, "fleet.scaling_threshold must be positive")
	}
	if c.Fleet.RelaySpeedKmh <= 0 {
		errs = append(errs, "fleet.relay_speed_kmh must be positive")
	}
	if c.Fleet.MaxTripsPerDay <= 0 {
		errs = append(errs, "fleet.max_trips_per_day must be positive")
	}
	if c.Fleet.MaxVehiclesPerHub <= 0 {
		errs = append(errs, "fleet.max_vehicles_per_hub must be positive")
	}
	validMixes := map[string]bool{"auto_heavy": true, "balanced": true, "bike_heavy": true}
	if !validMixes[c.Fleet.LastMileMix] {
		errs = append(errs, fmt.Sprintf("fleet.last_mile_mix must be one of: auto_heavy, balanced, bike_heavy, got %s", c.Fleet.LastMileMix))
	}
	if c.Fleet.MixShareCap <= 0 || c.Fleet.MixShareCap > 1 {
		errs = append(errs, "fleet.mix_share_cap must be in (0, 1]")
	}

	if c.Cost.OperatingDays <= 0 {
		errs = append(errs, "cost.operating_days must be positive")
	}
	if c.Cost.LastMileBikeRate <= 0 {
		errs = append(errs, "cost.last_mile_bike_rate must be positive")
	}
	if c.Cost.LastMileAutoRate <= 0 {
		errs = append(errs, "cost.last_mile_auto_rate must be positive")
	}
	if c.Cost.MainWarehouses < 0 {
		errs = append(errs, "cost.main_warehouses must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateTiers checks that tier bounds are sorted by radius and that the
// feeder allowance strictly decreases as the radius grows. Ordering
// violations carry CodeNonMonotonicTiers so callers can tell a broken
// tier policy from an ordinary bad field.
func validateTiers(name string, tiers []FeederTier) *apperror.Error {
	if len(tiers) == 0 {
		return apperror.NewWithField(apperror.CodeValidation, "tier table must not be empty", name)
	}
	for i, tier := range tiers {
		if tier.MaxRadiusKm <= 0 && i < len(tiers)-1 {
			return apperror.NewWithField(apperror.CodeValidation,
				fmt.Sprintf("tiers[%d].max_radius_km must be positive", i), name)
		}
		if tier.MaxFeeders <= 0 {
			return apperror.NewWithField(apperror.CodeValidation,
				fmt.Sprintf("tiers[%d].max_feeders must be positive", i), name)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if tier.MaxRadiusKm > 0 && tier.MaxRadiusKm <= prev.MaxRadiusKm {
			return apperror.NewWithField(apperror.CodeNonMonotonicTiers,
				"tiers must be sorted by ascending radius", name)
		}
		if tier.MaxFeeders >= prev.MaxFeeders {
			return apperror.NewWithField(apperror.CodeNonMonotonicTiers,
				fmt.Sprintf("feeder allowance must strictly decrease with radius (%d -> %d)",
					prev.MaxFeeders, tier.MaxFeeders),
				name)
		}
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
