// Package ingest reads order datasets from CSV files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"lastmile/internal/orders"
	"lastmile/pkg/apperror"
	"lastmile/pkg/geo"
	"lastmile/pkg/logger"
)

// Required CSV columns. Column matching trims whitespace and is
// case-insensitive.
var requiredColumns = []string{
	"customer", "pickup", "pickup_long", "pickup_lat",
	"order_long", "order_lat", "created_date",
}

// dateLayouts are tried in order when parsing created_date.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ReadFile loads a CSV order file. Rows with unparsable coordinates or
// dates are skipped and counted; structural problems (missing columns,
// unreadable file) are fatal validation errors.
func ReadFile(path string) (*orders.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeIO, "cannot open orders file").
			WithDetails("path", path)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, err
	}
	if ds.SkippedRows > 0 && logger.Log != nil {
		logger.Warn("skipped unparsable order rows",
			"path", path, "skipped", ds.SkippedRows, "loaded", ds.Len())
	}
	return ds, nil
}

// Read parses CSV order data from a reader.
func Read(r io.Reader) (*orders.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperror.New(apperror.CodeValidation, "orders file is empty")
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeValidation, "cannot read CSV header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	v := apperror.NewValidationErrors()
	for _, col := range requiredColumns {
		if _, ok := cols[col]; !ok {
			v.Add(apperror.NewWithField(apperror.CodeMissingColumn, "required column missing", col))
		}
	}
	if !v.IsValid() {
		return nil, v.AsError()
	}

	idIdx, hasID := cols["number"]
	pkgIdx, hasPkg := cols["package_size"]

	ds := &orders.Dataset{}
	rowNum := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			// Malformed row: skip and count, same as bad values.
			ds.SkippedRows++
			continue
		}

		get := func(col string) string {
			return strings.TrimSpace(record[cols[col]])
		}

		pickupLon, err1 := strconv.ParseFloat(get("pickup_long"), 64)
		pickupLat, err2 := strconv.ParseFloat(get("pickup_lat"), 64)
		orderLon, err3 := strconv.ParseFloat(get("order_long"), 64)
		orderLat, err4 := strconv.ParseFloat(get("order_lat"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			ds.SkippedRows++
			continue
		}

		createdAt, ok := parseDate(get("created_date"))
		if !ok {
			ds.SkippedRows++
			continue
		}

		id := fmt.Sprintf("row-%d", rowNum)
		if hasID {
			if raw := strings.TrimSpace(record[idIdx]); raw != "" {
				id = raw
			}
		}
		pkg := orders.PackageMedium
		if hasPkg {
			pkg = orders.ParsePackageClass(record[pkgIdx])
		}

		ds.Orders = append(ds.Orders, orders.Order{
			ID:        id,
			Customer:  get("customer"),
			Pickup:    get("pickup"),
			PickupLoc: geo.Point{Lat: pickupLat, Lon: pickupLon},
			DropLoc:   geo.Point{Lat: orderLat, Lon: orderLon},
			Package:   pkg,
			CreatedAt: createdAt,
		})
	}

	ds.SortCanonical()
	return ds, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
