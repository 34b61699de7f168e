package controller

import (
	"log/slog"
	"net/http"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/service"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewClimateController(svc *service.Service, logger *slog.Logger) ClimateController {
	if logger == nil {
		logger = slog.Default()
	}
	return &climateControllerImpl{svc: svc, logger: logger}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /partials/monthly", c.handleMonthlyPartial)
	mux.HandleFunc("GET /api/v1/years", c.handleYears)
	mux.HandleFunc("GET /api/v1/aggregates/{kind}", c.handleAggregates)
	mux.HandleFunc("GET /api/v1/trend", c.handleTrend)
	mux.HandleFunc("GET /api/v1/charts/{name}", c.handleChartJSON)
	mux.HandleFunc("GET /charts/{file}", c.handleChartPNG)
	mux.HandleFunc("GET /export/aggregates.xlsx", c.handleExport)
}
