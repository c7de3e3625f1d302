// Package report renders a network plan as an Excel workbook.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"lastmile/internal/planner"
	"lastmile/pkg/apperror"
	"lastmile/pkg/config"
)

// Writer produces plan workbooks under the configured output directory.
type Writer struct {
	cfg config.ReportConfig
}

// NewWriter creates a report writer.
func NewWriter(cfg config.ReportConfig) *Writer {
	return &Writer{cfg: cfg}
}

// Write renders the plan to an .xlsx file and returns its path. The output
// directory is created on demand; the file name carries the run ID so
// repeated runs never clobber each other.
func (w *Writer) Write(plan *planner.Plan) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	w.writeSummary(f, plan)
	w.writeHubs(f, plan)
	w.writeFeeders(f, plan)
	w.writeFleet(f, plan)
	w.writeCosts(f, plan)
	w.writeProjection(f, plan)

	// The default sheet is replaced by Summary.
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex("Summary"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return "", apperror.Wrap(err, apperror.CodeReport, "create report directory")
	}
	path := filepath.Join(w.cfg.OutputDir, fmt.Sprintf("plan-%s.xlsx", plan.RunID))
	if err := f.SaveAs(path); err != nil {
		return "", apperror.Wrap(err, apperror.CodeReport, "save report workbook")
	}
	return path, nil
}

// WriteJSON dumps the raw plan next to the workbook for downstream tooling.
func (w *Writer) WriteJSON(plan *planner.Plan) (string, error) {
	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return "", apperror.Wrap(err, apperror.CodeReport, "create report directory")
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeReport, "encode plan")
	}
	path := filepath.Join(w.cfg.OutputDir, fmt.Sprintf("plan-%s.json", plan.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperror.Wrap(err, apperror.CodeReport, "write plan json")
	}
	return path, nil
}

func (w *Writer) headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func (w *Writer) writeSummary(f *excelize.File, plan *planner.Plan) {
	sheet := "Summary"
	f.NewSheet(sheet)
	header := w.headerStyle(f)

	row := 1
	f.SetCellValue(sheet, cellAddr("A", row), fmt.Sprintf("%s Network Plan", w.cfg.CompanyName))
	f.MergeCell(sheet, cellAddr("A", row), cellAddr("B", row))
	row += 2

	f.SetCellValue(sheet, cellAddr("A", row), "Plan")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), header)
	row++

	pairs := []struct {
		name  string
		value any
	}{
		{"Run ID", plan.RunID},
		{"Generated At", plan.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Strategy", plan.Strategy},
		{"Coverage Radius (km)", plan.CoverageRadiusKm},
		{"Orders", plan.Stats.OrderCount},
		{"Skipped Rows", plan.Stats.SkippedRows},
		{"Daily Orders", plan.Stats.DailyOrders},
		{"Clusters", plan.Stats.ClusterCount},
		{"Hubs", len(plan.Hubs)},
		{"Feeders", len(plan.Feeders)},
		{"Uncovered Orders", plan.Stats.UncoveredOrders},
		{"Monthly Cost", money(w.cfg.Currency, plan.Costs.Total.StringFixed(2))},
		{"Cost Per Order", money(w.cfg.Currency, plan.Costs.CostPerOrder.StringFixed(2))},
	}
	for _, p := range pairs {
		f.SetCellValue(sheet, cellAddr("A", row), p.name)
		f.SetCellValue(sheet, cellAddr("B", row), p.value)
		row++
	}

	if len(plan.Warnings) > 0 {
		row++
		f.SetCellValue(sheet, cellAddr("A", row), "Warnings")
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), header)
		row++
		for _, warning := range plan.Warnings {
			f.SetCellValue(sheet, cellAddr("A", row), warning)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "B", 24)
}

func (w *Writer) writeHubs(f *excelize.File, plan *planner.Plan) {
	sheet := "Hubs"
	f.NewSheet(sheet)
	header := w.headerStyle(f)

	headers := []string{"ID", "Latitude", "Longitude", "Zone", "Density Score", "Orders"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "F1", header)

	for i, hub := range plan.Hubs {
		row := i + 2
		f.SetCellValue(sheet, cellAddr("A", row), hub.ID)
		f.SetCellValue(sheet, cellAddr("B", row), hub.Location.Lat)
		f.SetCellValue(sheet, cellAddr("C", row), hub.Location.Lon)
		f.SetCellValue(sheet, cellAddr("D", row), hub.Zone)
		f.SetCellValue(sheet, cellAddr("E", row), hub.DensityScore)
		f.SetCellValue(sheet, cellAddr("F", row), hub.OrderCount)
	}
	f.SetColWidth(sheet, "A", "F", 14)
}

func (w *Writer) writeFeeders(f *excelize.File, plan *planner.Plan) {
	sheet := "Feeders"
	f.NewSheet(sheet)
	header := w.headerStyle(f)

	headers := []string{"ID", "Latitude", "Longitude", "Size", "Capacity/Day", "Orders", "Hub", "Hub Dist (km)", "Source"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "I1", header)

	for i, feeder := range plan.Feeders {
		row := i + 2
		f.SetCellValue(sheet, cellAddr("A", row), feeder.ID)
		f.SetCellValue(sheet, cellAddr("B", row), feeder.Location.Lat)
		f.SetCellValue(sheet, cellAddr("C", row), feeder.Location.Lon)
		f.SetCellValue(sheet, cellAddr("D", row), string(feeder.Size))
		f.SetCellValue(sheet, cellAddr("E", row), feeder.CapacityPerDay)
		f.SetCellValue(sheet, cellAddr("F", row), feeder.OrderCount)
		f.SetCellValue(sheet, cellAddr("G", row), feeder.HubID)
		f.SetCellValue(sheet, cellAddr("H", row), feeder.HubDistanceKm)
		f.SetCellValue(sheet, cellAddr("I", row), string(feeder.Source))
	}
	f.SetColWidth(sheet, "A", "I", 14)
}

func (w *Writer) writeFleet(f *excelize.File, plan *planner.Plan) {
	sheet := "Fleet"
	f.NewSheet(sheet)
	header := w.headerStyle(f)
	row := 1

	if plan.FirstMile != nil && len(plan.FirstMile.Routes) > 0 {
		f.SetCellValue(sheet, cellAddr("A", row), "First Mile")
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("F", row), header)
		row++

		headers := []string{"Anchor", "Pickups", "Daily Orders", "Vehicle", "Tier", "Daily Cost"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), row), h)
		}
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("F", row), header)
		row++

		for _, route := range plan.FirstMile.Routes {
			f.SetCellValue(sheet, cellAddr("A", row), route.Anchor)
			f.SetCellValue(sheet, cellAddr("B", row), strings.Join(route.Pickups, ", "))
			f.SetCellValue(sheet, cellAddr("C", row), route.DailyOrders)
			f.SetCellValue(sheet, cellAddr("D", row), string(route.Vehicle))
			f.SetCellValue(sheet, cellAddr("E", row), string(route.Tier))
			f.SetCellValue(sheet, cellAddr("F", row), route.DailyCost)
			row++
		}
		row++
	}

	if plan.MiddleMile != nil && len(plan.MiddleMile.Lanes) > 0 {
		f.SetCellValue(sheet, cellAddr("A", row), "Middle Mile")
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("G", row), header)
		row++

		headers := []string{"Feeder", "Hub", "Dist (km)", "Vehicle", "Vehicles", "Trips/Day", "Daily Cost"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), row), h)
		}
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("G", row), header)
		row++

		for _, lane := range plan.MiddleMile.Lanes {
			f.SetCellValue(sheet, cellAddr("A", row), lane.FeederID)
			f.SetCellValue(sheet, cellAddr("B", row), lane.HubID)
			f.SetCellValue(sheet, cellAddr("C", row), lane.DistanceKm)
			f.SetCellValue(sheet, cellAddr("D", row), string(lane.Vehicle))
			f.SetCellValue(sheet, cellAddr("E", row), lane.Vehicles)
			f.SetCellValue(sheet, cellAddr("F", row), lane.TripsPerDay)
			f.SetCellValue(sheet, cellAddr("G", row), lane.DailyCost)
			row++
		}
		row++
	}

	if plan.Relays != nil && len(plan.Relays.Routes) > 0 {
		f.SetCellValue(sheet, cellAddr("A", row), "Hub Relays")
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("F", row), header)
		row++

		headers := []string{"Hubs", "Dist (km)", "Minutes", "Vehicle", "Trips/Day", "Daily Cost"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), row), h)
		}
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("F", row), header)
		row++

		for _, route := range plan.Relays.Routes {
			f.SetCellValue(sheet, cellAddr("A", row), joinInts(route.HubIDs))
			f.SetCellValue(sheet, cellAddr("B", row), route.DistanceKm)
			f.SetCellValue(sheet, cellAddr("C", row), route.Minutes)
			f.SetCellValue(sheet, cellAddr("D", row), string(route.Vehicle))
			f.SetCellValue(sheet, cellAddr("E", row), route.TripsPerDay)
			f.SetCellValue(sheet, cellAddr("F", row), route.DailyCost)
			row++
		}
		row++
	}

	if plan.LastMile != nil {
		f.SetCellValue(sheet, cellAddr("A", row), "Last Mile")
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), header)
		row++

		lm := plan.LastMile
		pairs := []struct {
			name  string
			value any
		}{
			{"Mix", string(lm.Mix)},
			{"Bike Share", lm.BikeShare},
			{"Auto Share", lm.AutoShare},
			{"Avg Drop Distance (km)", lm.AvgDropDistKm},
			{"Daily Orders", lm.DailyOrders},
			{"Daily Cost", lm.DailyCost},
			{"Monthly Cost", lm.MonthlyCost},
		}
		for _, p := range pairs {
			f.SetCellValue(sheet, cellAddr("A", row), p.name)
			f.SetCellValue(sheet, cellAddr("B", row), p.value)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "G", 16)
}

func (w *Writer) writeCosts(f *excelize.File, plan *planner.Plan) {
	sheet := "Costs"
	f.NewSheet(sheet)
	header := w.headerStyle(f)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Monthly Cost Breakdown (%s)", w.cfg.Currency))
	f.MergeCell(sheet, "A1", "B1")

	f.SetCellValue(sheet, "A3", "Component")
	f.SetCellValue(sheet, "B3", "Amount")
	f.SetCellStyle(sheet, "A3", "B3", header)

	b := plan.Costs
	rows := []struct {
		name   string
		amount string
	}{
		{"Main Warehouse Rent", b.MainRent.StringFixed(2)},
		{"Feeder Warehouse Rent", b.AuxRent.StringFixed(2)},
		{"Main Warehouse Staff", b.MainStaff.StringFixed(2)},
		{"Feeder Warehouse Staff", b.AuxStaff.StringFixed(2)},
		{"First Mile Transport", b.FirstMile.StringFixed(2)},
		{"Middle Mile Transport", b.MiddleMile.StringFixed(2)},
		{"Last Mile Transport", b.LastMile.StringFixed(2)},
		{"Total", b.Total.StringFixed(2)},
		{"Cost Per Order", b.CostPerOrder.StringFixed(2)},
	}
	for i, r := range rows {
		row := i + 4
		f.SetCellValue(sheet, cellAddr("A", row), r.name)
		f.SetCellValue(sheet, cellAddr("B", row), r.amount)
	}
	f.SetColWidth(sheet, "A", "B", 24)
}

func (w *Writer) writeProjection(f *excelize.File, plan *planner.Plan) {
	sheet := "Projection"
	f.NewSheet(sheet)
	header := w.headerStyle(f)

	headers := []string{"Monthly Orders", "Feeders", "Total Cost", "Cost Per Order"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "D1", header)

	for i, point := range plan.Projection {
		row := i + 2
		f.SetCellValue(sheet, cellAddr("A", row), point.MonthlyOrders)
		f.SetCellValue(sheet, cellAddr("B", row), point.AuxWarehouses)
		f.SetCellValue(sheet, cellAddr("C", row), point.Breakdown.Total.StringFixed(2))
		f.SetCellValue(sheet, cellAddr("D", row), point.Breakdown.CostPerOrder.StringFixed(2))
	}
	f.SetColWidth(sheet, "A", "D", 18)
}

func money(currency, amount string) string {
	return fmt.Sprintf("%s %s", currency, amount)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, " -> ")
}

// cellAddr builds a cell address.
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
