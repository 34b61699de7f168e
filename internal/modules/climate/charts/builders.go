package charts

import (
	"fmt"
	"strconv"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/analysis"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const (
	monthlyHover = "<b>Year:</b> %{text}<br>" +
		"<b>Month:</b> %{x}<br>" +
		"<b>Temp:</b> %{y:.2f} °C<extra></extra>"
	seriesHover = "<b>Date:</b> %{x}<br>" +
		"<b>Temperature:</b> %{y:.2f} °C<extra></extra>"
	trendHover = "<b>Date:</b> %{x}<br>" +
		"<b>Predicted Temperature:</b> %{y:.2f} °C<extra></extra>"
)

// MonthName maps 1..12 to its abbreviation. Other values are labelled "M<n>".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "M" + strconv.Itoa(month)
	}
	return monthNames[month-1]
}

// YearGroups exposes the year partition configured for the overlay chart.
func (s Style) YearGroups() analysis.YearGroups {
	m := s.Monthly
	highlighted := make([]int, 0, len(m.Highlighted.Colors))
	for y := range m.Highlighted.Colors {
		highlighted = append(highlighted, y)
	}
	return analysis.YearGroups{
		HistoricalFrom: m.Historical.From,
		HistoricalTo:   m.Historical.To,
		Highlighted:    highlighted,
		Latest:         m.Latest.Year,
	}
}

// BuildMonthly draws one line per selected year across the twelve months.
// Historical years share one style and one legend entry; highlighted years and
// the latest year are styled individually.
func BuildMonthly(table types.MonthlyTable, selected []int, style Style) Figure {
	m := style.Monthly
	fig := Figure{Data: []Trace{}, Layout: style.layout(m.ChartFrame)}
	part := analysis.PartitionYears(selected, style.YearGroups())

	for i, year := range part.Historical {
		tr := monthTrace(table, year, m.Historical.Line, m.Historical.Opacity)
		tr.ShowLegend = i == 0
		if tr.ShowLegend {
			tr.Name = m.Historical.Label
		}
		fig.Data = append(fig.Data, tr)
	}

	for _, year := range part.Highlighted {
		line := m.Highlighted.Line
		line.Color = m.Highlighted.Colors[year]
		tr := monthTrace(table, year, line, m.Highlighted.Opacity)
		tr.Name = strconv.Itoa(year)
		tr.ShowLegend = true
		fig.Data = append(fig.Data, tr)
	}

	if part.HasLatest {
		tr := monthTrace(table, part.Latest, m.Latest.Line, m.Latest.Opacity)
		tr.Name = strconv.Itoa(part.Latest)
		tr.ShowLegend = true
		fig.Data = append(fig.Data, tr)
	}
	return fig
}

func monthTrace(table types.MonthlyTable, year int, line Line, opacity float64) Trace {
	rows := table.ForYear(year)
	label := strconv.Itoa(year)
	tr := Trace{
		Type:          "scatter",
		Mode:          "lines",
		X:             make([]any, 0, len(rows)),
		Y:             make([]float64, 0, len(rows)),
		Text:          make([]string, 0, len(rows)),
		Line:          line,
		Opacity:       opacity,
		HoverTemplate: monthlyHover,
	}
	for _, r := range rows {
		tr.X = append(tr.X, MonthName(r.Month))
		tr.Y = append(tr.Y, r.TemperatureC)
		tr.Text = append(tr.Text, label)
	}
	return tr
}

// BuildTimeSeries draws every month in source order plus one flat segment per
// decade average spanning Jan 1 of its first year to Dec 31 of its last.
func BuildTimeSeries(table types.MonthlyTable, decades []types.DecadeAverage, style Style) Figure {
	ts := style.TimeSeries
	fig := Figure{Data: []Trace{}, Layout: style.layout(ts.ChartFrame)}
	fig.Layout.XAxis.Type = "date"

	series := Trace{
		Type:          "scatter",
		Name:          ts.Series.Name,
		Mode:          "lines",
		X:             make([]any, 0, len(table)),
		Y:             make([]float64, 0, len(table)),
		Line:          ts.Series.Line,
		Opacity:       ts.Series.Opacity,
		ShowLegend:    true,
		HoverTemplate: seriesHover,
	}
	for _, r := range table {
		series.X = append(series.X, fmt.Sprintf("%04d-%02d-01", r.Year, r.Month))
		series.Y = append(series.Y, r.TemperatureC)
	}
	fig.Data = append(fig.Data, series)

	fallback := 0
	for _, d := range decades {
		color, ok := ts.DecadeColors[d.Decade]
		if !ok {
			color = ts.FallbackColors[fallback%len(ts.FallbackColors)]
			fallback++
		}
		fig.Data = append(fig.Data, Trace{
			Type:       "scatter",
			Name:       fmt.Sprintf("%ds avg", d.Decade),
			Mode:       "lines",
			X:          []any{fmt.Sprintf("%04d-01-01", d.Decade), fmt.Sprintf("%04d-12-31", d.Decade+9)},
			Y:          []float64{d.AvgTemperatureC, d.AvgTemperatureC},
			Line:       Line{Color: color, Width: ts.DecadeLineWidth},
			Opacity:    1,
			ShowLegend: true,
			HoverTemplate: fmt.Sprintf("<b>Decade:</b> %ds<br><b>Avg Temperature:</b> %.2f °C<extra></extra>",
				d.Decade, d.AvgTemperatureC),
		})
	}
	return fig
}

// TrendSummary is the text of the statistics box on the annual chart.
func TrendSummary(fit types.TrendFit) string {
	return "<b>Trend line variables:</b><br>" +
		fmt.Sprintf("Slope: %.5f °C/year<br>", fit.Slope) +
		fmt.Sprintf("R²: %.3f<br>", fit.RSquared()) +
		fmt.Sprintf("p-value: %.3e<br>", fit.PValue)
}

// BuildAnnual draws the annual means, the fitted trend line and the fit summary.
func BuildAnnual(annual []types.AnnualAverage, fit types.TrendFit, style Style) Figure {
	a := style.Annual
	fig := Figure{Data: []Trace{}, Layout: style.layout(a.ChartFrame)}

	years := make([]any, len(annual))
	temps := make([]float64, len(annual))
	for i, v := range annual {
		years[i] = v.Year
		temps[i] = v.TemperatureC
	}

	fig.Data = append(fig.Data,
		Trace{
			Type:          "scatter",
			Name:          a.Series.Name,
			Mode:          "lines+markers",
			X:             years,
			Y:             temps,
			Line:          a.Series.Line,
			Marker:        a.Series.Marker,
			Opacity:       a.Series.Opacity,
			ShowLegend:    true,
			HoverTemplate: seriesHover,
		},
		Trace{
			Type:          "scatter",
			Name:          a.Trend.Name,
			Mode:          "lines",
			X:             years,
			Y:             analysis.TrendLine(fit, annual),
			Line:          a.Trend.Line,
			Opacity:       a.Trend.Opacity,
			ShowLegend:    true,
			HoverTemplate: trendHover,
		},
	)

	box := a.Annotation
	fig.Layout.Annotations = []Annotation{{
		XRef:        "paper",
		YRef:        "paper",
		X:           box.X,
		Y:           box.Y,
		Text:        TrendSummary(fit),
		ShowArrow:   false,
		Align:       "left",
		BorderColor: box.BorderColor,
		BorderWidth: box.BorderWidth,
		BorderPad:   box.BorderPad,
		BGColor:     box.Background,
		Opacity:     box.Opacity,
		Font:        Font{Family: style.Font.Family, Size: box.FontSize, Color: style.Font.Color},
	}}
	return fig
}
