package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

var (
	dashboardTmpl *template.Template

	errNotLoaded = errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
)

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// YearOption is one entry of the year multi-select.
type YearOption struct {
	Year     int
	Selected bool
}

// MonthlyData is the view model of the overlay chart partial.
type MonthlyData struct {
	Figure   charts.Figure
	Selected []int
}

type DashboardData struct {
	Years      []YearOption
	Monthly    MonthlyData
	TimeSeries charts.Figure
	Annual     charts.Figure
	Trend      types.TrendFit
}

// YearOptions marks the selected years among all available ones.
func YearOptions(years, selected []int) []YearOption {
	chosen := make(map[int]bool, len(selected))
	for _, y := range selected {
		chosen[y] = true
	}
	out := make([]YearOption, len(years))
	for i, y := range years {
		out[i] = YearOption{Year: y, Selected: chosen[y]}
	}
	return out
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errNotLoaded
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderMonthlyPartial executes only the overlay chart partial into w.
// Use for HTMX fragment refresh when the year selection changes.
func RenderMonthlyPartial(w io.Writer, data *MonthlyData) error {
	if dashboardTmpl == nil {
		return errNotLoaded
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/monthly.html", data)
}
