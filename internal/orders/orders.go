// Package orders defines the delivery order model and dataset used by the
// planning pipeline.
package orders

import (
	"sort"
	"strings"
	"time"

	"lastmile/pkg/apperror"
	"lastmile/pkg/geo"
)

// PackageClass is the size class of a shipped package.
type PackageClass string

const (
	PackageSmall   PackageClass = "S"
	PackageMedium  PackageClass = "M"
	PackageLarge   PackageClass = "L"
	PackageXLarge  PackageClass = "XL"
	PackageXXLarge PackageClass = "XXL"
)

// VolumeM3 returns the nominal package volume in cubic meters.
func (p PackageClass) VolumeM3() float64 {
	switch p {
	case PackageSmall:
		return 0.001
	case PackageMedium:
		return 0.003375
	case PackageLarge:
		return 0.008
	case PackageXLarge:
		return 0.027
	case PackageXXLarge:
		return 0.064
	default:
		return 0
	}
}

// Valid reports whether the class is one of the known package classes.
func (p PackageClass) Valid() bool {
	switch p {
	case PackageSmall, PackageMedium, PackageLarge, PackageXLarge, PackageXXLarge:
		return true
	}
	return false
}

// ParsePackageClass normalizes a raw size token. Unknown tokens map to
// PackageMedium, matching how unclassified shipments are priced.
func ParsePackageClass(s string) PackageClass {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SMALL":
		return PackageSmall
	case "M", "MEDIUM", "":
		return PackageMedium
	case "L", "LARGE":
		return PackageLarge
	case "XL":
		return PackageXLarge
	case "XXL":
		return PackageXXLarge
	default:
		return PackageMedium
	}
}

// AllPackageClasses lists the classes in ascending volume order.
func AllPackageClasses() []PackageClass {
	return []PackageClass{PackageSmall, PackageMedium, PackageLarge, PackageXLarge, PackageXXLarge}
}

// Order is a single delivery order.
type Order struct {
	ID        string
	Customer  string
	Pickup    string // pickup location name
	PickupLoc geo.Point
	DropLoc   geo.Point
	Package   PackageClass
	CreatedAt time.Time
}

// Dataset is a validated collection of orders plus ingest statistics.
type Dataset struct {
	Orders      []Order
	SkippedRows int // rows dropped during ingest for bad coordinates or dates
}

// Len returns the number of usable orders.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Orders)
}

// IsEmpty reports whether the dataset holds no usable orders.
// An empty dataset is valid input and produces an empty plan.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// DropPoints returns the drop coordinates of all orders, index-aligned
// with Orders.
func (d *Dataset) DropPoints() []geo.Point {
	pts := make([]geo.Point, len(d.Orders))
	for i, o := range d.Orders {
		pts[i] = o.DropLoc
	}
	return pts
}

// Validate checks structural integrity of the dataset. Coordinate or date
// problems on individual rows are handled at ingest; here only plausibility
// bounds are enforced.
func (d *Dataset) Validate() *apperror.ValidationErrors {
	v := apperror.NewValidationErrors()
	if d == nil {
		v.Add(apperror.ErrNilDataset)
		return v
	}
	if len(d.Orders) == 0 {
		v.Add(apperror.NewWarning(apperror.CodeEmptyDataset, "dataset contains no usable orders"))
	}
	for i, o := range d.Orders {
		if o.DropLoc.Lat < -90 || o.DropLoc.Lat > 90 {
			v.Add(apperror.NewWithField(apperror.CodeInvalidCoordinate, "drop latitude out of range", "order_lat").
				WithDetails("row", i))
		}
		if o.DropLoc.Lon < -180 || o.DropLoc.Lon > 180 {
			v.Add(apperror.NewWithField(apperror.CodeInvalidCoordinate, "drop longitude out of range", "order_long").
				WithDetails("row", i))
		}
		if !o.Package.Valid() {
			v.Add(apperror.NewWithField(apperror.CodeValidation, "unknown package class", "package_size").
				WithDetails("row", i))
		}
	}
	return v
}

// SortCanonical orders the dataset by creation time, then ID. Ingest and the
// plan hash both rely on this ordering.
func (d *Dataset) SortCanonical() {
	sort.SliceStable(d.Orders, func(i, j int) bool {
		a, b := d.Orders[i], d.Orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// DailyVolume returns the average number of orders per distinct calendar day
// in the dataset. A dataset spanning a single day returns its full count.
func (d *Dataset) DailyVolume() float64 {
	if d.Len() == 0 {
		return 0
	}
	days := make(map[string]struct{})
	for _, o := range d.Orders {
		days[o.CreatedAt.Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return float64(d.Len())
	}
	return float64(d.Len()) / float64(len(days))
}

// CustomerTier classifies how a pickup customer is serviced.
type CustomerTier string

const (
	// TierAnchor customers get dedicated first-mile capacity.
	TierAnchor CustomerTier = "anchor"
	// TierStandard customers share pooled first-mile capacity.
	TierStandard CustomerTier = "standard"
)

// TierPolicy resolves customer names to service tiers using configured
// substring patterns. The pattern table is injected from configuration;
// there are no built-in customer names.
type TierPolicy struct {
	anchorPatterns []string
}

// NewTierPolicy builds a policy from lowercase substring patterns.
func NewTierPolicy(anchorPatterns []string) *TierPolicy {
	patterns := make([]string, 0, len(anchorPatterns))
	for _, p := range anchorPatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return &TierPolicy{anchorPatterns: patterns}
}

// Tier returns the service tier for a customer name.
func (t *TierPolicy) Tier(customer string) CustomerTier {
	name := strings.ToLower(customer)
	for _, p := range t.anchorPatterns {
		if strings.Contains(name, p) {
			return TierAnchor
		}
	}
	return TierStandard
}
