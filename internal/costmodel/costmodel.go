// Package costmodel computes monthly operating cost for a planned network.
// All money flows through decimal arithmetic so that line items always add
// up to the reported total.
package costmodel

import (
	"github.com/shopspring/decimal"
)

// Rates holds the monthly cost calibration. All amounts are rupees.
type Rates struct {
	MainWarehouseRent decimal.Decimal // per main warehouse per month
	AuxWarehouseRent  decimal.Decimal // per feeder per month
	MainStaffSalary   decimal.Decimal // per staff member at a main warehouse
	MainStaffCount    int
	AuxStaffSalary    decimal.Decimal // per staff member at a feeder
	AuxStaffCount     int
	FirstMileTripCost decimal.Decimal // per collection trip
	MiddleMileTrip    decimal.Decimal // per replenishment trip
	LastMileTripCost  decimal.Decimal // per delivery trip
	FirstMileTripSize int             // orders per collection trip
	LastMileTripSize  int             // orders per delivery trip
	MiddleTripsPerAux int             // daily replenishment trips per feeder
	DaysPerMonth      int
}

// DefaultRates returns the production calibration.
func DefaultRates() Rates {
	return Rates{
		MainWarehouseRent: decimal.NewFromInt(35000),
		AuxWarehouseRent:  decimal.NewFromInt(15000),
		MainStaffSalary:   decimal.NewFromInt(25000),
		MainStaffCount:    2,
		AuxStaffSalary:    decimal.NewFromInt(12000),
		AuxStaffCount:     1,
		FirstMileTripCost: decimal.NewFromInt(1350),
		MiddleMileTrip:    decimal.NewFromInt(1350),
		LastMileTripCost:  decimal.NewFromInt(900),
		FirstMileTripSize: 40,
		LastMileTripSize:  20,
		MiddleTripsPerAux: 2,
		DaysPerMonth:      30,
	}
}

// Network summarizes the planned network for costing.
type Network struct {
	MainWarehouses int
	AuxWarehouses  int
	DailyOrders    int
}

// Breakdown is the monthly cost split into its line items. Total is always
// the exact decimal sum of the items.
type Breakdown struct {
	MainRent     decimal.Decimal
	AuxRent      decimal.Decimal
	MainStaff    decimal.Decimal
	AuxStaff     decimal.Decimal
	FirstMile    decimal.Decimal
	MiddleMile   decimal.Decimal
	LastMile     decimal.Decimal
	Total        decimal.Decimal
	CostPerOrder decimal.Decimal
}

// Compute prices a network for one month.
//
// Transport scales with daily volume: collection and delivery trips are the
// daily order count divided by the trip size, floored at one trip as long as
// there is any volume at all. A network with zero daily orders still pays
// rent and staff but no transport, and its cost per order is zero rather
// than undefined.
func Compute(n Network, r Rates) Breakdown {
	days := decimal.NewFromInt(int64(r.DaysPerMonth))

	b := Breakdown{
		MainRent:  r.MainWarehouseRent.Mul(decimal.NewFromInt(int64(n.MainWarehouses))),
		AuxRent:   r.AuxWarehouseRent.Mul(decimal.NewFromInt(int64(n.AuxWarehouses))),
		MainStaff: r.MainStaffSalary.Mul(decimal.NewFromInt(int64(r.MainStaffCount * n.MainWarehouses))),
		AuxStaff:  r.AuxStaffSalary.Mul(decimal.NewFromInt(int64(r.AuxStaffCount * n.AuxWarehouses))),
	}

	if n.DailyOrders > 0 {
		firstTrips := tripsPerDay(n.DailyOrders, r.FirstMileTripSize)
		lastTrips := tripsPerDay(n.DailyOrders, r.LastMileTripSize)
		middleTrips := int64(n.AuxWarehouses * r.MiddleTripsPerAux)

		b.FirstMile = r.FirstMileTripCost.Mul(decimal.NewFromInt(firstTrips)).Mul(days)
		b.MiddleMile = r.MiddleMileTrip.Mul(decimal.NewFromInt(middleTrips)).Mul(days)
		b.LastMile = r.LastMileTripCost.Mul(decimal.NewFromInt(lastTrips)).Mul(days)
	}

	b.Total = b.MainRent.
		Add(b.AuxRent).
		Add(b.MainStaff).
		Add(b.AuxStaff).
		Add(b.FirstMile).
		Add(b.MiddleMile).
		Add(b.LastMile)

	if n.DailyOrders > 0 {
		monthlyOrders := decimal.NewFromInt(int64(n.DailyOrders)).Mul(days)
		b.CostPerOrder = b.Total.DivRound(monthlyOrders, 2)
	}
	return b
}

// tripsPerDay converts daily volume into whole trips, at least one.
func tripsPerDay(dailyOrders, tripSize int) int64 {
	if tripSize <= 0 {
		return 1
	}
	trips := int64(dailyOrders / tripSize)
	if trips < 1 {
		trips = 1
	}
	return trips
}

// ScalePoint is one row of a growth projection.
type ScalePoint struct {
	MonthlyOrders int
	AuxWarehouses int
	Breakdown     Breakdown
}

// ProjectScale prices the network at increasing monthly volumes. Feeder
// count grows with volume, roughly one feeder per 350 monthly orders, so
// cost per order falls (or holds) as the network densifies.
func ProjectScale(mains int, monthlyVolumes []int, r Rates) []ScalePoint {
	points := make([]ScalePoint, 0, len(monthlyVolumes))
	for _, monthly := range monthlyVolumes {
		aux := monthly / 350
		if monthly > 0 && aux < 1 {
			aux = 1
		}
		daily := monthly / r.DaysPerMonth
		if monthly > 0 && daily < 1 {
			daily = 1
		}
		points = append(points, ScalePoint{
			MonthlyOrders: monthly,
			AuxWarehouses: aux,
			Breakdown:     Compute(Network{MainWarehouses: mains, AuxWarehouses: aux, DailyOrders: daily}, r),
		})
	}
	return points
}
