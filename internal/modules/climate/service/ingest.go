package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/metrics"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/repository"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

// ObservationSubscriber is the part of the MQTT subscriber the ingest needs.
type ObservationSubscriber interface {
	SetMessageHandler(handler func(ctx context.Context, obs types.MonthlyObservation) error)
}

// RegisterIngest stores every observation delivered by subscriber. The next
// render pass picks the new month up.
func RegisterIngest(subscriber ObservationSubscriber, repo repository.ClimateRepository, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(ctx context.Context, obs types.MonthlyObservation) error {
		logger.Debug("processing monthly observation",
			"year", obs.Year,
			"month", obs.Month,
		)

		err := repo.UpsertMonthly(ctx, obs.Record(), repository.SourceMQTT)
		metrics.RecordIngest(err)
		if err != nil {
			logger.Error("failed to store observation",
				"year", obs.Year,
				"month", obs.Month,
				"error", err,
			)
			return fmt.Errorf("store observation: %w", err)
		}

		logger.Info("stored monthly observation",
			"year", obs.Year,
			"month", obs.Month,
			"temperature_c", *obs.TemperatureC,
		)
		return nil
	})
}
