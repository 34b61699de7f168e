package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

//go:embed sql/get-monthly.sql
var getMonthlySQL string

//go:embed sql/upsert-monthly.sql
var upsertMonthlySQL string

//go:embed sql/count-monthly.sql
var countMonthlySQL string

//go:embed sql/get-years.sql
var getYearsSQL string

// Record origins stored in the source column.
const (
	SourceImport = "import"
	SourceMQTT   = "mqtt"
)

type ClimateRepository interface {
	// Load returns every stored month ordered by year then month.
	Load(ctx context.Context) (types.MonthlyTable, error)
	Years(ctx context.Context) ([]int, error)
	Count(ctx context.Context) (int, error)
	UpsertMonthly(ctx context.Context, rec types.MonthlyRecord, source string) error
	// Import upserts the whole table in one transaction.
	Import(ctx context.Context, table types.MonthlyTable) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Load(ctx context.Context) (types.MonthlyTable, error) {
	rows, err := r.db.QueryContext(ctx, getMonthlySQL)
	if err != nil {
		return nil, fmt.Errorf("query monthly temperatures: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close monthly rows", "error", err)
		}
	}()

	var out types.MonthlyTable
	for rows.Next() {
		var rec types.MonthlyRecord
		if err := rows.Scan(&rec.Year, &rec.Month, &rec.TemperatureC); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, getYearsSQL)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close years rows", "error", err)
		}
	}()
	var out []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countMonthlySQL).Scan(&n)
	return n, err
}

func (r *repositoryImpl) UpsertMonthly(ctx context.Context, rec types.MonthlyRecord, source string) error {
	if _, err := r.db.ExecContext(ctx, upsertMonthlySQL, rec.Year, rec.Month, rec.TemperatureC, source); err != nil {
		return fmt.Errorf("upsert %d-%02d: %w", rec.Year, rec.Month, err)
	}
	return nil
}

func (r *repositoryImpl) Import(ctx context.Context, table types.MonthlyTable) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertMonthlySQL)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range table {
		if _, err := stmt.ExecContext(ctx, rec.Year, rec.Month, rec.TemperatureC, SourceImport); err != nil {
			return i, fmt.Errorf("import %d-%02d: %w", rec.Year, rec.Month, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(table), nil
}
