// Package render rasterizes dashboard figures to PNG with gonum/plot so they
// can be embedded in reports without a browser.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
)

const dpi = 96

var ErrUnsupportedX = errors.New("unsupported x value")

var monthIndex = map[string]float64{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

var dashes = map[string][]vg.Length{
	"dot":         {vg.Points(1), vg.Points(3)},
	"dash":        {vg.Points(6), vg.Points(4)},
	"longdash":    {vg.Points(12), vg.Points(4)},
	"dashdot":     {vg.Points(6), vg.Points(3), vg.Points(1), vg.Points(3)},
	"longdashdot": {vg.Points(12), vg.Points(3), vg.Points(1), vg.Points(3)},
}

// PNG writes fig as a PNG image sized by its layout.
func PNG(w io.Writer, fig charts.Figure) error {
	p, err := Plot(fig)
	if err != nil {
		return err
	}
	width := pixels(fig.Layout.Width, 1200)
	height := pixels(fig.Layout.Height, 600)

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// Plot converts fig into a gonum plot.
func Plot(fig charts.Figure) (*plot.Plot, error) {
	l := fig.Layout
	p := plot.New()
	p.Title.Text = l.Title.Text
	p.Title.TextStyle.Font.Size = fontSize(l.Title.Font.Size)
	p.X.Label.Text = l.XAxis.Title.Text
	p.X.Label.TextStyle.Font.Size = fontSize(l.XAxis.Title.Font.Size)
	p.Y.Label.Text = l.YAxis.Title.Text
	p.Y.Label.TextStyle.Font.Size = fontSize(l.YAxis.Title.Font.Size)
	p.X.Tick.Label.Font.Size = fontSize(l.XAxis.TickFont.Size)
	p.Y.Tick.Label.Font.Size = fontSize(l.YAxis.TickFont.Size)
	p.BackgroundColor = ParseColor(l.PlotBGColor, 1)
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = fontSize(l.Legend.Font.Size)

	grid := plotter.NewGrid()
	grid.Vertical.Color = ParseColor(l.XAxis.GridColor, 1)
	grid.Horizontal.Color = ParseColor(l.YAxis.GridColor, 1)
	p.Add(grid)

	months := false
	for i, tr := range fig.Data {
		xys, isMonth, err := points(tr)
		if err != nil {
			return nil, fmt.Errorf("trace %d: %w", i, err)
		}
		months = months || isMonth
		if err := addTrace(p, tr, xys); err != nil {
			return nil, fmt.Errorf("trace %d: %w", i, err)
		}
	}
	if months || len(fig.Data) == 0 {
		p.X.Tick.Marker = monthTicks{}
		p.X.Min, p.X.Max = 1, 12
	}

	for _, a := range l.Annotations {
		if err := addAnnotation(p, a); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func addTrace(p *plot.Plot, tr charts.Trace, xys plotter.XYs) error {
	style := draw.LineStyle{
		Color:  ParseColor(tr.Line.Color, tr.Opacity),
		Width:  vg.Points(tr.Line.Width),
		Dashes: dashes[tr.Line.Dash],
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}
	line.LineStyle = style
	p.Add(line)
	if tr.ShowLegend && tr.Name != "" {
		p.Legend.Add(tr.Name, line)
	}

	if tr.Marker == nil || !strings.Contains(tr.Mode, "markers") {
		return nil
	}
	fill, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	fill.GlyphStyle.Shape = draw.CircleGlyph{}
	fill.GlyphStyle.Color = ParseColor(tr.Marker.Color, 1)
	fill.GlyphStyle.Radius = vg.Points(tr.Marker.Size / 2)

	ring, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	ring.GlyphStyle.Shape = draw.RingGlyph{}
	ring.GlyphStyle.Color = ParseColor(tr.Marker.Line.Color, 1)
	ring.GlyphStyle.Radius = vg.Points(tr.Marker.Size / 2)
	p.Add(fill, ring)
	return nil
}

// addAnnotation places a paper-referenced box relative to the current data range.
func addAnnotation(p *plot.Plot, a charts.Annotation) error {
	x, y := a.X, a.Y
	if a.XRef == "paper" {
		x = p.X.Min + a.X*(p.X.Max-p.X.Min)
	}
	if a.YRef == "paper" {
		y = p.Y.Min + a.Y*(p.Y.Max-p.Y.Min)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: x, Y: y}},
		Labels: []string{PlainText(a.Text)},
	})
	if err != nil {
		return fmt.Errorf("annotation: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = fontSize(a.Font.Size)
		labels.TextStyle[i].Color = ParseColor(a.Font.Color, 1)
		labels.TextStyle[i].YAlign = draw.YTop
	}
	p.Add(labels)
	return nil
}

func points(tr charts.Trace) (plotter.XYs, bool, error) {
	if len(tr.X) != len(tr.Y) {
		return nil, false, fmt.Errorf("x has %d values, y has %d", len(tr.X), len(tr.Y))
	}
	xys := make(plotter.XYs, len(tr.X))
	months := false
	for i, v := range tr.X {
		x, isMonth, err := XValue(v)
		if err != nil {
			return nil, false, err
		}
		months = months || isMonth
		xys[i] = plotter.XY{X: x, Y: tr.Y[i]}
	}
	return xys, months, nil
}

// XValue maps a figure x value onto a numeric axis. Month abbreviations map to
// 1..12, dates to fractional years and numbers to themselves.
func XValue(v any) (float64, bool, error) {
	switch x := v.(type) {
	case int:
		return float64(x), false, nil
	case float64:
		return x, false, nil
	case string:
		if m, ok := monthIndex[x]; ok {
			return m, true, nil
		}
		if t, err := time.Parse(time.DateOnly, x); err == nil {
			start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(1, 0, 0)
			return float64(t.Year()) + t.Sub(start).Hours()/end.Sub(start).Hours(), false, nil
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, false, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %v", ErrUnsupportedX, v)
}

// ParseColor resolves "#rrggbb" or an SVG colour name. Unknown values fall back
// to black.
func ParseColor(s string, opacity float64) color.Color {
	c := color.NRGBA{A: 255}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
		}
	} else if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		c.R, c.G, c.B = named.R, named.G, named.B
	}
	if opacity > 0 && opacity < 1 {
		c.A = uint8(math.Round(opacity * 255))
	}
	return c
}

// PlainText strips the small HTML subset used in hover and annotation text.
func PlainText(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	for _, tag := range []string{"<b>", "</b>", "<i>", "</i>"} {
		s = strings.ReplaceAll(s, tag, "")
	}
	return strings.TrimRight(s, "\n")
}

func fontSize(size float64) vg.Length {
	if size <= 0 {
		return vg.Points(12)
	}
	return vg.Points(size)
}

func pixels(px, fallback int) vg.Length {
	if px <= 0 {
		px = fallback
	}
	return vg.Length(px) * vg.Inch / dpi
}

type monthTicks struct{}

func (monthTicks) Ticks(lo, hi float64) []plot.Tick {
	var ticks []plot.Tick
	for m := 1; m <= 12; m++ {
		if float64(m) < lo || float64(m) > hi {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: float64(m), Label: charts.MonthName(m)})
	}
	return ticks
}
