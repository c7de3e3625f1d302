package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastmile/pkg/apperror"
	"lastmile/pkg/geo"
)

func TestPackageClass_VolumeM3(t *testing.T) {
	tests := []struct {
		class PackageClass
		want  float64
	}{
		{PackageSmall, 0.001},
		{PackageMedium, 0.003375},
		{PackageLarge, 0.008},
		{PackageXLarge, 0.027},
		{PackageXXLarge, 0.064},
		{PackageClass("bogus"), 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, tt.class.VolumeM3(), 1e-12, string(tt.class))
	}
}

func TestParsePackageClass(t *testing.T) {
	tests := []struct {
		in   string
		want PackageClass
	}{
		{"S", PackageSmall},
		{"small", PackageSmall},
		{" M ", PackageMedium},
		{"LARGE", PackageLarge},
		{"xl", PackageXLarge},
		{"XXL", PackageXXLarge},
		{"", PackageMedium},
		{"unknown", PackageMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePackageClass(tt.in), tt.in)
	}
}

func TestDataset_Validate(t *testing.T) {
	valid := &Dataset{Orders: []Order{
		{ID: "1", DropLoc: geo.Point{Lat: 12.97, Lon: 77.59}, Package: PackageSmall},
	}}
	assert.True(t, valid.Validate().IsValid())

	var nilDS *Dataset
	v := nilDS.Validate()
	assert.False(t, v.IsValid())

	badLat := &Dataset{Orders: []Order{
		{ID: "1", DropLoc: geo.Point{Lat: 120, Lon: 77.59}, Package: PackageSmall},
	}}
	v = badLat.Validate()
	require.False(t, v.IsValid())
	assert.Equal(t, apperror.CodeInvalidCoordinate, v.Errors[0].Code)

	badClass := &Dataset{Orders: []Order{
		{ID: "1", DropLoc: geo.Point{Lat: 12, Lon: 77}, Package: PackageClass("giant")},
	}}
	assert.False(t, badClass.Validate().IsValid())
}

func TestDataset_Validate_EmptyIsWarning(t *testing.T) {
	ds := &Dataset{}
	v := ds.Validate()
	assert.True(t, v.IsValid())
	assert.True(t, v.HasWarnings())
}

func TestDataset_SortCanonical(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ds := &Dataset{Orders: []Order{
		{ID: "b", CreatedAt: t0},
		{ID: "a", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(-time.Hour)},
	}}
	ds.SortCanonical()

	assert.Equal(t, "c", ds.Orders[0].ID)
	assert.Equal(t, "a", ds.Orders[1].ID)
	assert.Equal(t, "b", ds.Orders[2].ID)
}

func TestDataset_DailyVolume(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	ds := &Dataset{Orders: []Order{
		{ID: "1", CreatedAt: day1},
		{ID: "2", CreatedAt: day1},
		{ID: "3", CreatedAt: day2},
		{ID: "4", CreatedAt: day2},
	}}
	assert.InDelta(t, 2.0, ds.DailyVolume(), 1e-12)

	empty := &Dataset{}
	assert.Zero(t, empty.DailyVolume())
}

func TestTierPolicy(t *testing.T) {
	policy := NewTierPolicy([]string{"Herbalife", " trent ", ""})

	assert.Equal(t, TierAnchor, policy.Tier("Herbalife Nutrition Pvt Ltd"))
	assert.Equal(t, TierAnchor, policy.Tier("TRENT Westside"))
	assert.Equal(t, TierStandard, policy.Tier("Corner Store"))

	empty := NewTierPolicy(nil)
	assert.Equal(t, TierStandard, empty.Tier("Herbalife"))
}

func TestGenerateSynthetic_Deterministic(t *testing.T) {
	opts := SyntheticOptions{
		Count:  100,
		Center: geo.Point{Lat: 12.9716, Lon: 77.5946},
		StdDev: 0.05,
		Seed:   42,
	}

	a := GenerateSynthetic(opts)
	b := GenerateSynthetic(opts)

	require.Equal(t, 100, a.Len())
	assert.Equal(t, a.Orders, b.Orders)
}

func TestGenerateSynthetic_Distribution(t *testing.T) {
	center := geo.Point{Lat: 12.9716, Lon: 77.5946}
	ds := GenerateSynthetic(SyntheticOptions{Count: 1000, Center: center, StdDev: 0.05, Seed: 42})

	mean := geo.Mean(ds.DropPoints())
	assert.InDelta(t, center.Lat, mean.Lat, 0.01)
	assert.InDelta(t, center.Lon, mean.Lon, 0.01)
}

func TestGenerateSynthetic_Empty(t *testing.T) {
	ds := GenerateSynthetic(SyntheticOptions{Count: 0})
	assert.True(t, ds.IsEmpty())
}
