package controller

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/analysis"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/export"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/render"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/service"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/views"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (c *climateControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	years, err := parseYears(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := c.svc.Build(r.Context(), years)
	if err != nil {
		c.writeServiceError(w, r, "dashboard", err)
		return
	}
	data := views.DashboardData{
		Years:      views.YearOptions(d.Years, d.Selected),
		Monthly:    views.MonthlyData{Figure: d.MonthlyChart, Selected: d.Selected},
		TimeSeries: d.TimeSeriesChart,
		Annual:     d.AnnualChart,
		Trend:      d.Trend,
	}
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, &data); err != nil {
		c.logger.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (c *climateControllerImpl) handleMonthlyPartial(w http.ResponseWriter, r *http.Request) {
	years, err := parseYears(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	fig, selected, err := c.svc.BuildMonthly(r.Context(), years)
	if err != nil {
		c.writeServiceError(w, r, "monthly partial", err)
		return
	}
	var buf bytes.Buffer
	if err := views.RenderMonthlyPartial(&buf, &views.MonthlyData{Figure: fig, Selected: selected}); err != nil {
		c.logger.Error("monthly partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (c *climateControllerImpl) handleYears(w http.ResponseWriter, r *http.Request) {
	table, err := c.svc.Table(r.Context())
	if err != nil {
		c.writeServiceError(w, r, "years", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, table.Years())
}

func (c *climateControllerImpl) handleAggregates(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if kind != "decades" && kind != "annual" {
		utils.WriteError(w, http.StatusNotFound, "unknown aggregate "+kind)
		return
	}
	table, err := c.svc.Table(r.Context())
	if err != nil {
		c.writeServiceError(w, r, "aggregates", err)
		return
	}
	if kind == "decades" {
		utils.WriteJSON(w, http.StatusOK, analysis.DecadeAverages(table))
		return
	}
	utils.WriteJSON(w, http.StatusOK, analysis.AnnualAverages(table))
}

type trendResponse struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RValue    float64 `json:"r_value"`
	RSquared  float64 `json:"r_squared"`
	PValue    float64 `json:"p_value"`
	StdErr    float64 `json:"std_err"`
	N         int     `json:"n"`
}

func (c *climateControllerImpl) handleTrend(w http.ResponseWriter, r *http.Request) {
	table, err := c.svc.Table(r.Context())
	if err != nil {
		c.writeServiceError(w, r, "trend", err)
		return
	}
	fit, err := analysis.FitTrend(analysis.AnnualAverages(table))
	if err != nil {
		c.writeServiceError(w, r, "trend", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, trendResponse{
		Slope:     fit.Slope,
		Intercept: fit.Intercept,
		RValue:    fit.RValue,
		RSquared:  fit.RSquared(),
		PValue:    fit.PValue,
		StdErr:    fit.StdErr,
		N:         fit.N,
	})
}

func (c *climateControllerImpl) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	fig, ok := c.figure(w, r, r.PathValue("name"))
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, fig)
}

func (c *climateControllerImpl) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	name, found := strings.CutSuffix(r.PathValue("file"), ".png")
	if !found {
		utils.WriteError(w, http.StatusNotFound, "charts are served as .png")
		return
	}
	fig, ok := c.figure(w, r, name)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.PNG(&buf, fig); err != nil {
		c.logger.Error("png render failed", "chart", name, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	utils.WriteBody(w, http.StatusOK, "image/png", buf.Bytes())
}

func (c *climateControllerImpl) handleExport(w http.ResponseWriter, r *http.Request) {
	table, err := c.svc.Table(r.Context())
	if err != nil {
		c.writeServiceError(w, r, "export", err)
		return
	}
	data := export.Data{
		Monthly: table,
		Decades: analysis.DecadeAverages(table),
		Annual:  analysis.AnnualAverages(table),
	}
	data.Trend, err = analysis.FitTrend(data.Annual)
	if err != nil {
		c.writeServiceError(w, r, "export", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, data); err != nil {
		c.logger.Error("xlsx export failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	utils.SetAttachment(w, "nepal-temperature-aggregates.xlsx")
	utils.WriteBody(w, http.StatusOK, xlsxContentType, buf.Bytes())
}

// figure builds the named chart. It writes the error response itself and
// reports false when the caller should stop.
func (c *climateControllerImpl) figure(w http.ResponseWriter, r *http.Request, name string) (charts.Figure, bool) {
	switch name {
	case chartMonthly, chartTimeSeries, chartAnnual:
	default:
		utils.WriteError(w, http.StatusNotFound, "unknown chart "+name)
		return charts.Figure{}, false
	}
	years, err := parseYears(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return charts.Figure{}, false
	}
	if name == chartMonthly {
		fig, _, err := c.svc.BuildMonthly(r.Context(), years)
		if err != nil {
			c.writeServiceError(w, r, "chart "+name, err)
			return charts.Figure{}, false
		}
		return fig, true
	}
	d, err := c.svc.Build(r.Context(), years)
	if err != nil {
		c.writeServiceError(w, r, "chart "+name, err)
		return charts.Figure{}, false
	}
	if name == chartTimeSeries {
		return d.TimeSeriesChart, true
	}
	return d.AnnualChart, true
}

// writeServiceError maps domain failures to 422 and everything else to 500.
func (c *climateControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNoData), errors.Is(err, analysis.ErrDegenerateFit):
		c.logger.Warn(op+": not enough data", "error", err)
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case r.Context().Err() != nil:
		c.logger.Debug(op+": request canceled", "error", err)
	default:
		c.logger.Error(op+" failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature data")
	}
}
