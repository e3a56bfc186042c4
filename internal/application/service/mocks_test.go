package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

type testLogger struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (l *testLogger) Info(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *testLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *testLogger) Error(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

type mockCompleter struct {
	prompts      []string
	completeFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt)
	}
	return "{}", nil
}

type mockGateway struct {
	mu         sync.Mutex
	calls      []entity.TripInsertPayload
	insertFunc func(ctx context.Context, trip entity.TripInsertPayload) (string, error)
}

func (m *mockGateway) Insert(ctx context.Context, trip entity.TripInsertPayload) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, trip)
	m.mu.Unlock()
	if m.insertFunc != nil {
		return m.insertFunc(ctx, trip)
	}
	return "trip-1", nil
}

type mockTripReader struct {
	lastFilter    entity.TripFilter
	listTripsFunc func(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error)
}

func (m *mockTripReader) ListTrips(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error) {
	m.lastFilter = filter
	if m.listTripsFunc != nil {
		return m.listTripsFunc(ctx, filter)
	}
	return nil, nil
}

type mockBudgetReader struct {
	listBudgetsFunc func(ctx context.Context, year int) ([]*entity.Budget, error)
}

func (m *mockBudgetReader) ListBudgets(ctx context.Context, year int) ([]*entity.Budget, error) {
	if m.listBudgetsFunc != nil {
		return m.listBudgetsFunc(ctx, year)
	}
	return nil, nil
}

var fixedNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
