package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/config"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/db"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/httpapi"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/charts"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/repository"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/service"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/views"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/mqtt"
	"github.com/Rashmi2733/nepal-temperature-changes/tools/migrate"
)

const dbStatsInterval = 15 * time.Second

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dataSource", cfg.DataSource,
		"csvPath", cfg.CSVPath,
		"stylePath", cfg.StylePath,
		"sqlitePath", cfg.Path,
		"mqttBroker", cfg.MQTTBroker,
		"mqttTopic", cfg.MQTTTopic,
		"metrics", cfg.MetricsEnabled,
	)

	style, err := charts.LoadStyle(cfg.StylePath)
	if err != nil {
		return err
	}
	if err := views.LoadTemplates(); err != nil {
		return err
	}

	opts := httpapi.Options{Source: cfg.DataSource, Metrics: cfg.MetricsEnabled}
	var (
		source     service.Source
		subscriber *mqtt.Subscriber
	)

	switch cfg.DataSource {
	case config.SourceSQLite:
		dbConn, err := db.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(dbConn); closeErr != nil {
				logger.Error("db close", "error", closeErr)
			}
		}()

		repo, err := prepareStore(ctx, cfg, dbConn, logger)
		if err != nil {
			return err
		}
		source = repo
		opts.Check = dbConn.PingContext
		if cfg.MetricsEnabled {
			go db.CollectStats(ctx, dbConn, dbStatsInterval)
		}

		if cfg.MQTTBroker != "" {
			subscriber, err = mqtt.NewSubscriber(cfg, logger)
			if err != nil {
				return err
			}
			// The handler must be set before Connect: the broker may deliver
			// queued messages right after CONNACK.
			climate.RegisterIngest(subscriber, repo, logger)
			opts.MQTT = subscriber
		}
	default:
		source = service.CSVSource{Path: cfg.CSVPath}
		opts.Check = func(context.Context) error {
			_, err := os.Stat(cfg.CSVPath)
			return err
		}
		if cfg.MQTTBroker != "" {
			logger.Warn("mqtt ingest requires DATA_SOURCE=sqlite; subscriber disabled")
		}
	}

	mux := httpapi.NewMux(opts)
	climate.RegisterFeature(mux, source, style, logger)

	if subscriber != nil {
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			// Dashboard keeps serving stored data; paho retries in the background.
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
		defer func() {
			logger.Info("mqtt disconnecting")
			subscriber.Disconnect()
		}()
	}

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// prepareStore migrates the database and seeds it from the CSV file on first
// start.
func prepareStore(ctx context.Context, cfg config.Config, dbConn *sql.DB, logger *slog.Logger) (repository.ClimateRepository, error) {
	applied, err := migrate.Run(ctx, dbConn)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	repo := repository.NewRepository(dbConn)
	if cfg.CSVPath == "" {
		return repo, nil
	}
	n, err := climate.SeedFromCSV(ctx, repo, cfg.CSVPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("seed file not found; starting with stored records only", "path", cfg.CSVPath)
	case err != nil:
		return nil, fmt.Errorf("seed: %w", err)
	case n > 0:
		logger.Info("seeded monthly temperatures", "records", n, "path", cfg.CSVPath)
	}
	return repo, nil
}
