package costmodel

import (
	"github.com/shopspring/decimal"

	"lastmile/pkg/config"
)

// FromConfig builds rates from the application configuration. Zero values
// fall back to the production calibration so a partial config stays safe.
func FromConfig(cfg config.CostConfig) Rates {
	r := DefaultRates()

	if cfg.MainRent > 0 {
		r.MainWarehouseRent = decimal.NewFromInt(cfg.MainRent)
	}
	if cfg.AuxRent > 0 {
		r.AuxWarehouseRent = decimal.NewFromInt(cfg.AuxRent)
	}
	if cfg.MainStaffCost > 0 {
		r.MainStaffSalary = decimal.NewFromInt(cfg.MainStaffCost)
	}
	if cfg.MainStaffCount > 0 {
		r.MainStaffCount = cfg.MainStaffCount
	}
	if cfg.AuxStaffCost > 0 {
		r.AuxStaffSalary = decimal.NewFromInt(cfg.AuxStaffCost)
	}
	if cfg.AuxStaffCount > 0 {
		r.AuxStaffCount = cfg.AuxStaffCount
	}
	if cfg.FirstMileTripCost > 0 {
		r.FirstMileTripCost = decimal.NewFromInt(cfg.FirstMileTripCost)
	}
	if cfg.MiddleMileTripCost > 0 {
		r.MiddleMileTrip = decimal.NewFromInt(cfg.MiddleMileTripCost)
	}
	if cfg.LastMileTripCost > 0 {
		r.LastMileTripCost = decimal.NewFromInt(cfg.LastMileTripCost)
	}
	if cfg.FirstMileOrdersPerTrip > 0 {
		r.FirstMileTripSize = cfg.FirstMileOrdersPerTrip
	}
	if cfg.LastMileOrdersPerTrip > 0 {
		r.LastMileTripSize = cfg.LastMileOrdersPerTrip
	}
	if cfg.MiddleMileTripsPerAux > 0 {
		r.MiddleTripsPerAux = cfg.MiddleMileTripsPerAux
	}
	if cfg.OperatingDays > 0 {
		r.DaysPerMonth = cfg.OperatingDays
	}
	return r
}
