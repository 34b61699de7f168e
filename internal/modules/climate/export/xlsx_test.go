package export

import (
	"bytes"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

func TestWriteXLSX(t *testing.T) {
	d := Data{
		Monthly: types.MonthlyTable{
			{Year: 2020, Month: 1, TemperatureC: 4.5},
			{Year: 2020, Month: 2, TemperatureC: 6},
		},
		Decades: []types.DecadeAverage{{Decade: 2020, AvgTemperatureC: 5.25, Months: 2}},
		Annual:  []types.AnnualAverage{{Year: 2020, TemperatureC: 5.25, Months: 2}},
		Trend:   types.TrendFit{Slope: 0.5, Intercept: -1000, RValue: 1, N: 2},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, d); err != nil {
		t.Fatalf("WriteXLSX() err = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	wantSheets := []string{SheetMonthly, SheetDecades, SheetAnnual, SheetTrend}
	if got := f.GetSheetList(); !slices.Equal(got, wantSheets) {
		t.Fatalf("sheets = %v; want %v", got, wantSheets)
	}

	t.Run("monthly rows", func(t *testing.T) {
		rows, err := f.GetRows(SheetMonthly)
		if err != nil {
			t.Fatalf("GetRows: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %d; want header + 2", len(rows))
		}
		want := []string{"2020", "2", "Feb", "6"}
		if !slices.Equal(rows[2], want) {
			t.Errorf("row 3 = %v; want %v", rows[2], want)
		}
	})

	t.Run("decades", func(t *testing.T) {
		rows, err := f.GetRows(SheetDecades)
		if err != nil {
			t.Fatalf("GetRows: %v", err)
		}
		want := []string{"2020", "2020s", "5.25", "2"}
		if len(rows) != 2 || !slices.Equal(rows[1], want) {
			t.Errorf("rows = %v; want header + %v", rows, want)
		}
	})

	t.Run("trend", func(t *testing.T) {
		slope, err := f.GetCellValue(SheetTrend, "B2")
		if err != nil {
			t.Fatalf("GetCellValue: %v", err)
		}
		if slope != "0.5" {
			t.Errorf("slope = %q; want 0.5", slope)
		}
		n, _ := f.GetCellValue(SheetTrend, "B8")
		if n != "2" {
			t.Errorf("n = %q; want 2", n)
		}
	})
}
