package repository

import (
	"context"
	"database/sql"
	"slices"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
	"github.com/Rashmi2733/nepal-temperature-changes/tools/migrate"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Fatalf("close db: %v", closeErr)
		}
	})
	if _, err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestLoad_Empty(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	table, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("Load: got %d records, want 0", len(table))
	}
	n, err := repo.Count(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; want 0, nil", n, err)
	}
}

func TestImportAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	in := types.MonthlyTable{
		{Year: 2021, Month: 2, TemperatureC: 6.5},
		{Year: 2020, Month: 1, TemperatureC: 4.25},
		{Year: 2021, Month: 1, TemperatureC: 5},
	}
	n, err := repo.Import(ctx, in)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 3 {
		t.Errorf("Import = %d, want 3", n)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := types.MonthlyTable{
		{Year: 2020, Month: 1, TemperatureC: 4.25},
		{Year: 2021, Month: 1, TemperatureC: 5},
		{Year: 2021, Month: 2, TemperatureC: 6.5},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}

	years, err := repo.Years(ctx)
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if !slices.Equal(years, []int{2020, 2021}) {
		t.Errorf("Years = %v, want [2020 2021]", years)
	}
}

func TestUpsertMonthly_ReplacesExisting(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)

	if err := repo.UpsertMonthly(ctx, types.MonthlyRecord{Year: 2025, Month: 1, TemperatureC: 3}, SourceImport); err != nil {
		t.Fatalf("UpsertMonthly: %v", err)
	}
	if err := repo.UpsertMonthly(ctx, types.MonthlyRecord{Year: 2025, Month: 1, TemperatureC: 4.2}, SourceMQTT); err != nil {
		t.Fatalf("UpsertMonthly: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}

	var temp float64
	var source string
	if err := db.QueryRow(`SELECT temperature_c, source FROM monthly_temperatures WHERE year = 2025 AND month = 1`).Scan(&temp, &source); err != nil {
		t.Fatalf("select: %v", err)
	}
	if temp != 4.2 || source != SourceMQTT {
		t.Errorf("row = %v %q, want 4.2 %q", temp, source, SourceMQTT)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.Load(ctx); err == nil {
		t.Fatal("Load with canceled context: error = nil, want non-nil")
	}
}
