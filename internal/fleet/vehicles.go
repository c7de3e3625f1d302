// Package fleet allocates vehicles across the first, middle and last mile
// of the network.
package fleet

import (
	"lastmile/internal/orders"
	"lastmile/pkg/apperror"
)

// VehicleType identifies a vehicle class.
type VehicleType string

const (
	VehicleBike      VehicleType = "bike"
	VehicleAuto      VehicleType = "auto"
	VehicleMiniTruck VehicleType = "mini_truck"
	VehicleTruck     VehicleType = "truck"
)

// VehicleSpec describes one vehicle class.
type VehicleSpec struct {
	Type            VehicleType
	CapacityPerTrip int     // orders per trip
	VolumeM3        float64 // cargo volume
	Packages        []orders.PackageClass
	DailyCost       int64 // rupees per vehicle-day
}

// Carries reports whether the vehicle can carry the package class.
func (v VehicleSpec) Carries(p orders.PackageClass) bool {
	for _, c := range v.Packages {
		if c == p {
			return true
		}
	}
	return false
}

// Policy is the vehicle capability table, ordered from smallest to largest.
type Policy struct {
	Specs []VehicleSpec
}

// DefaultPolicy returns the production vehicle table.
func DefaultPolicy() *Policy {
	sml := []orders.PackageClass{orders.PackageSmall, orders.PackageMedium, orders.PackageLarge}
	smlXL := append(append([]orders.PackageClass{}, sml...), orders.PackageXLarge)
	all := append(append([]orders.PackageClass{}, smlXL...), orders.PackageXXLarge)

	return &Policy{Specs: []VehicleSpec{
		{Type: VehicleBike, CapacityPerTrip: 80, VolumeM3: 0.3, Packages: sml, DailyCost: 700},
		{Type: VehicleAuto, CapacityPerTrip: 120, VolumeM3: 1.5, Packages: smlXL, DailyCost: 900},
		{Type: VehicleMiniTruck, CapacityPerTrip: 400, VolumeM3: 6.0, Packages: all, DailyCost: 1350},
		{Type: VehicleTruck, CapacityPerTrip: 600, VolumeM3: 10.0, Packages: all, DailyCost: 1800},
	}}
}

// Validate checks that every package class has at least one capable vehicle.
// A class nothing can carry is a fatal policy configuration error.
func (p *Policy) Validate() error {
	if len(p.Specs) == 0 {
		return apperror.New(apperror.CodePolicyConfiguration, "vehicle table is empty")
	}
	for _, class := range orders.AllPackageClasses() {
		capable := false
		for _, spec := range p.Specs {
			if spec.Carries(class) {
				capable = true
				break
			}
		}
		if !capable {
			return apperror.New(apperror.CodeNoCapableVehicle,
				"no vehicle can carry package class").
				WithDetails("package_class", string(class)).
				WithSeverity(apperror.SeverityCritical)
		}
	}
	return nil
}

// Spec returns the spec for a vehicle type.
func (p *Policy) Spec(t VehicleType) (VehicleSpec, bool) {
	for _, s := range p.Specs {
		if s.Type == t {
			return s, true
		}
	}
	return VehicleSpec{}, false
}

// hierarchy is the escalation order for pickup vehicles. Trucks are
// reserved for middle-mile lanes.
var hierarchy = []VehicleType{VehicleBike, VehicleAuto, VehicleMiniTruck}

// hierarchyIndex returns the position of a type in the escalation order,
// or the largest index for types outside it.
func hierarchyIndex(t VehicleType) int {
	for i, h := range hierarchy {
		if h == t {
			return i
		}
	}
	return len(hierarchy) - 1
}

// MinVehicleFor returns the smallest pickup vehicle allowed for a package
// class.
func MinVehicleFor(class orders.PackageClass) VehicleType {
	switch class {
	case orders.PackageXXLarge:
		return VehicleMiniTruck
	case orders.PackageXLarge:
		return VehicleAuto
	default:
		return VehicleBike
	}
}

// VehicleForVolume returns the smallest pickup vehicle whose cargo volume
// fits the daily load.
func (p *Policy) VehicleForVolume(volumeM3 float64) VehicleType {
	for _, t := range hierarchy {
		if spec, ok := p.Spec(t); ok && volumeM3 <= spec.VolumeM3 {
			return t
		}
	}
	return VehicleMiniTruck
}

// SelectVehicle picks the pickup vehicle for a load: the larger of the
// package-class minimum and the volume recommendation.
func (p *Policy) SelectVehicle(largest orders.PackageClass, volumeM3 float64) VehicleType {
	byClass := MinVehicleFor(largest)
	byVolume := p.VehicleForVolume(volumeM3)
	if hierarchyIndex(byClass) >= hierarchyIndex(byVolume) {
		return byClass
	}
	return byVolume
}

// escalate returns the larger of two pickup vehicle types.
func escalate(a, b VehicleType) VehicleType {
	if hierarchyIndex(a) >= hierarchyIndex(b) {
		return a
	}
	return b
}
