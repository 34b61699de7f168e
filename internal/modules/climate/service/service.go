// Package service runs one dashboard render pass: load the table, aggregate it
// and build every figure.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/metrics"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/analysis"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/loader"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

// ErrNoData is returned when the source holds no records at all.
var ErrNoData = errors.New("no temperature records")

// Source yields the monthly table. It is called once per render pass.
type Source interface {
	Load(ctx context.Context) (types.MonthlyTable, error)
}

// CSVSource reads the table from a CSV file on every call.
type CSVSource struct {
	Path string
}

func (s CSVSource) Load(ctx context.Context) (types.MonthlyTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.LoadFile(s.Path)
}

// Dashboard is the result of one render pass.
type Dashboard struct {
	Years    []int
	Selected []int

	Decades []types.DecadeAverage
	Annual  []types.AnnualAverage
	Trend   types.TrendFit

	MonthlyChart    charts.Figure
	TimeSeriesChart charts.Figure
	AnnualChart     charts.Figure
}

type Service struct {
	source Source
	style  charts.Style
	logger *slog.Logger
}

func NewService(source Source, style charts.Style, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, style: style, logger: logger}
}

func (s *Service) Style() charts.Style { return s.style }

// Table loads the current monthly table.
func (s *Service) Table(ctx context.Context) (types.MonthlyTable, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	if len(table) == 0 {
		return nil, ErrNoData
	}
	return table, nil
}

// Build loads the table and builds all three figures. The figures are built
// concurrently; they share only read-only inputs.
func (s *Service) Build(ctx context.Context, requested []int) (d Dashboard, err error) {
	start := time.Now()
	var records int
	defer func() {
		metrics.RecordDashboardBuild(records, time.Since(start), err)
	}()

	table, err := s.Table(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	records = len(table)

	d.Years = table.Years()
	d.Selected = analysis.SelectYears(d.Years, requested)
	d.Decades = analysis.DecadeAverages(table)
	d.Annual = analysis.AnnualAverages(table)
	d.Trend, err = analysis.FitTrend(d.Annual)
	if err != nil {
		return Dashboard{}, fmt.Errorf("fit trend: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.MonthlyChart = charts.BuildMonthly(table, d.Selected, s.style)
		return gctx.Err()
	})
	g.Go(func() error {
		d.TimeSeriesChart = charts.BuildTimeSeries(table, d.Decades, s.style)
		return gctx.Err()
	})
	g.Go(func() error {
		d.AnnualChart = charts.BuildAnnual(d.Annual, d.Trend, s.style)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	s.logger.DebugContext(ctx, "dashboard built",
		"records", records,
		"years", len(d.Years),
		"selected", len(d.Selected),
		"elapsed", time.Since(start),
	)
	return d, nil
}

// BuildMonthly rebuilds only the overlay chart for a new year selection.
func (s *Service) BuildMonthly(ctx context.Context, requested []int) (charts.Figure, []int, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return charts.Figure{}, nil, err
	}
	selected := analysis.SelectYears(table.Years(), requested)
	return charts.BuildMonthly(table, selected, s.style), selected, nil
}
