package climate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/controller"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/loader"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/repository"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/service"
)

// RegisterFeature mounts the dashboard, JSON API, PNG and export routes and
// returns the service backing them.
func RegisterFeature(mux *http.ServeMux, source service.Source, style charts.Style, logger *slog.Logger) *service.Service {
	svc := service.NewService(source, style, logger)
	climateController := controller.NewClimateController(svc, logger)
	climateController.RegisterRoutes(mux)
	return svc
}

// RegisterIngest stores observations delivered by the subscriber in repo.
func RegisterIngest(subscriber service.ObservationSubscriber, repo repository.ClimateRepository, logger *slog.Logger) {
	service.RegisterIngest(subscriber, repo, logger)
}

// SeedFromCSV imports csvPath into repo when repo holds no records yet.
// It returns the number of imported rows.
func SeedFromCSV(ctx context.Context, repo repository.ClimateRepository, csvPath string) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	table, err := loader.LoadFile(csvPath)
	if err != nil {
		return 0, err
	}
	return repo.Import(ctx, table)
}
