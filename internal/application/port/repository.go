package port

import (
	"context"
	"errors"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// ErrNotFound is returned by readers and stores when a record does not exist
var ErrNotFound = errors.New("not found")

// TripGateway persists finalized trips and returns the new record ID
type TripGateway interface {
	Insert(ctx context.Context, trip entity.TripInsertPayload) (string, error)
}

// TripReader lists persisted trips
type TripReader interface {
	ListTrips(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error)
}

// BudgetReader lists planned budgets. Year 0 returns every year.
type BudgetReader interface {
	ListBudgets(ctx context.Context, year int) ([]*entity.Budget, error)
}

// TripBackend is the full contract of a persistence backend
type TripBackend interface {
	TripGateway
	TripReader
	BudgetReader
}
