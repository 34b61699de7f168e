// Package export writes the dashboard aggregates as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

const (
	SheetMonthly = "Monthly"
	SheetDecades = "Decades"
	SheetAnnual  = "Annual"
	SheetTrend   = "Trend"
)

// Data is everything written to the workbook.
type Data struct {
	Monthly types.MonthlyTable
	Decades []types.DecadeAverage
	Annual  []types.AnnualAverage
	Trend   types.TrendFit
}

// WriteXLSX writes one sheet per aggregate to w.
func WriteXLSX(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#EBF0F8"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetMonthly); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDecades, SheetAnnual, SheetTrend} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	monthly := make([][]any, 0, len(d.Monthly))
	for _, r := range d.Monthly {
		monthly = append(monthly, []any{r.Year, r.Month, charts.MonthName(r.Month), r.TemperatureC})
	}
	decades := make([][]any, 0, len(d.Decades))
	for _, r := range d.Decades {
		decades = append(decades, []any{r.Decade, fmt.Sprintf("%ds", r.Decade), r.AvgTemperatureC, r.Months})
	}
	annual := make([][]any, 0, len(d.Annual))
	for _, r := range d.Annual {
		annual = append(annual, []any{r.Year, r.TemperatureC, r.Months})
	}
	trend := [][]any{
		{"slope", d.Trend.Slope},
		{"intercept", d.Trend.Intercept},
		{"r_value", d.Trend.RValue},
		{"r_squared", d.Trend.RSquared()},
		{"p_value", d.Trend.PValue},
		{"std_err", d.Trend.StdErr},
		{"n", d.Trend.N},
	}

	sheets := []struct {
		name    string
		columns []any
		rows    [][]any
	}{
		{SheetMonthly, []any{"year", "month", "month_name", "monthly_temperature_C"}, monthly},
		{SheetDecades, []any{"decade", "label", "avg_temperature_C", "months"}, decades},
		{SheetAnnual, []any{"year", "temperature_C", "months"}, annual},
		{SheetTrend, []any{"statistic", "value"}, trend},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.columns, s.rows, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("%s width: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
