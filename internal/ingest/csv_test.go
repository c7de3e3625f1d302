package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastmile/internal/orders"
	"lastmile/pkg/apperror"
)

const sampleCSV = `number, customer, pickup, pickup_long, pickup_lat, order_long, order_lat, package_size, created_date
1001,Herbalife Nutrition,HSR Depot,77.6387,12.9141,77.6101,12.9352,M,2024-03-01 09:15:00
1002,Corner Store,Whitefield Depot,77.7499,12.9698,77.7402,12.9555,XL,2024-03-01 08:05:00
1003,Corner Store,Whitefield Depot,77.7499,12.9698,bad_lon,12.9555,S,2024-03-01 10:00:00
1004,Trent Westside,HSR Depot,77.6387,12.9141,77.6200,12.9300,XXL,not-a-date
1005,Kirana Mart,HSR Depot,77.6387,12.9141,77.6300,12.9250,,2024-03-02
`

func TestRead(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Rows 1003 (bad coordinate) and 1004 (bad date) are skipped, counted.
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, ds.SkippedRows)

	// Canonical ordering: by created date.
	assert.Equal(t, "1002", ds.Orders[0].ID)
	assert.Equal(t, "1001", ds.Orders[1].ID)
	assert.Equal(t, "1005", ds.Orders[2].ID)

	first := ds.Orders[1]
	assert.Equal(t, "Herbalife Nutrition", first.Customer)
	assert.Equal(t, "HSR Depot", first.Pickup)
	assert.InDelta(t, 12.9352, first.DropLoc.Lat, 1e-9)
	assert.InDelta(t, 77.6101, first.DropLoc.Lon, 1e-9)
	assert.Equal(t, orders.PackageMedium, first.Package)

	// Empty package size defaults to medium.
	assert.Equal(t, orders.PackageMedium, ds.Orders[2].Package)
}

func TestRead_MissingColumn(t *testing.T) {
	csv := "customer,pickup,pickup_long,pickup_lat,order_long\n"
	_, err := Read(strings.NewReader(csv))

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeMissingColumn))
}

func TestRead_EmptyFile(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
}

func TestRead_HeaderOnly(t *testing.T) {
	csv := "number,customer,pickup,pickup_long,pickup_lat,order_long,order_lat,package_size,created_date\n"
	ds, err := Read(strings.NewReader(csv))

	// No data rows: valid, empty dataset.
	require.NoError(t, err)
	assert.True(t, ds.IsEmpty())
	assert.Zero(t, ds.SkippedRows)
}

func TestRead_NoIDColumn(t *testing.T) {
	csv := "customer,pickup,pickup_long,pickup_lat,order_long,order_lat,created_date\n" +
		"Shop,Depot,77.60,12.90,77.61,12.91,2024-03-01\n"
	ds, err := Read(strings.NewReader(csv))

	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "row-1", ds.Orders[0].ID)
	assert.Equal(t, orders.PackageMedium, ds.Orders[0].Package)
}

func TestRead_MalformedRow(t *testing.T) {
	csv := "customer,pickup,pickup_long,pickup_lat,order_long,order_lat,created_date\n" +
		"Shop,Depot,77.60,12.90,77.61,12.91,2024-03-01\n" +
		"short,row\n"
	ds, err := Read(strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, 1, ds.SkippedRows)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ds, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeIO))
}

func TestParseDate(t *testing.T) {
	valid := []string{
		"2024-03-01 09:15:00",
		"2024-03-01T09:15:00Z",
		"2024-03-01",
		"01/03/2024 09:15",
		"01/03/2024",
	}
	for _, s := range valid {
		_, ok := parseDate(s)
		assert.True(t, ok, s)
	}

	_, ok := parseDate("March 1st")
	assert.False(t, ok)
}
