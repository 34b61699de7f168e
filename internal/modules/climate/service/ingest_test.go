package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/repository"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

type fakeSubscriber struct {
	handler func(ctx context.Context, obs types.MonthlyObservation) error
}

func (f *fakeSubscriber) SetMessageHandler(h func(ctx context.Context, obs types.MonthlyObservation) error) {
	f.handler = h
}

type fakeRepo struct {
	repository.ClimateRepository
	upserts []types.MonthlyRecord
	sources []string
	err     error
}

func (f *fakeRepo) UpsertMonthly(_ context.Context, rec types.MonthlyRecord, source string) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, rec)
	f.sources = append(f.sources, source)
	return nil
}

func TestRegisterIngest(t *testing.T) {
	sub := &fakeSubscriber{}
	repo := &fakeRepo{}
	RegisterIngest(sub, repo, slog.Default())
	if sub.handler == nil {
		t.Fatal("handler not registered")
	}

	temp := 4.2
	if err := sub.handler(context.Background(), types.MonthlyObservation{Year: 2025, Month: 1, TemperatureC: &temp}); err != nil {
		t.Fatalf("handler err = %v", err)
	}
	if len(repo.upserts) != 1 || repo.upserts[0] != (types.MonthlyRecord{Year: 2025, Month: 1, TemperatureC: 4.2}) {
		t.Errorf("upserts = %+v", repo.upserts)
	}
	if repo.sources[0] != repository.SourceMQTT {
		t.Errorf("source = %q; want %q", repo.sources[0], repository.SourceMQTT)
	}
}

func TestRegisterIngest_StoreFailure(t *testing.T) {
	sub := &fakeSubscriber{}
	storeErr := errors.New("database is locked")
	RegisterIngest(sub, &fakeRepo{err: storeErr}, slog.Default())

	temp := 1.0
	err := sub.handler(context.Background(), types.MonthlyObservation{Year: 2025, Month: 2, TemperatureC: &temp})
	if !errors.Is(err, storeErr) {
		t.Fatalf("handler err = %v; want %v", err, storeErr)
	}
}
