package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

var budgetColumns = []string{"id", "year", "month", "trip_type", "budget_amount", "created_at"}

// BudgetRepository stores planned budgets in the local sqlite database
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Save inserts a budget or replaces the amount of the existing (year, month, trip type) row
func (r *BudgetRepository) Save(ctx context.Context, budget *entity.Budget) error {
	if budget.Year <= 0 || budget.TripType == "" {
		return fmt.Errorf("budget year and trip type are required")
	}
	if budget.ID == "" {
		budget.ID = r.newID()
	}
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = r.now().UTC()
	}

	query, args, err := psql.Insert("budgets").
		Columns(budgetColumns...).
		Values(budget.ID, budget.Year, budget.Month, budget.TripType, budget.BudgetAmount, budget.CreatedAt).
		Suffix("ON CONFLICT (year, month, trip_type) DO UPDATE SET budget_amount = excluded.budget_amount").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to save budget",
			zap.Int("year", budget.Year),
			zap.String("trip_type", budget.TripType),
			zap.Error(err))
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// ListBudgets returns budgets for year (0 for all), newest period first
func (r *BudgetRepository) ListBudgets(ctx context.Context, year int) ([]*entity.Budget, error) {
	builder := psql.Select(budgetColumns...).From("budgets")
	if year > 0 {
		builder = builder.Where(sq.Eq{"year": year})
	}
	query, args, err := builder.OrderBy("year DESC", "month DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list budgets", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*entity.Budget
	for rows.Next() {
		var b entity.Budget
		if err := rows.Scan(&b.ID, &b.Year, &b.Month, &b.TripType, &b.BudgetAmount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}
