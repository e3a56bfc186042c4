package repository

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/application/port"
)

// Backend serves trips and budgets from the local database
type Backend struct {
	*TripRepository
	*BudgetRepository
}

// NewBackend creates a sqlite-backed trip backend
func NewBackend(db *sql.DB, logger *zap.Logger) *Backend {
	return &Backend{
		TripRepository:   NewTripRepository(db, logger),
		BudgetRepository: NewBudgetRepository(db, logger),
	}
}

var _ port.TripBackend = (*Backend)(nil)
