package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

var fixedNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newMockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	backend := NewBackend(db, zap.NewNop())
	backend.TripRepository.now = func() time.Time { return fixedNow }
	backend.TripRepository.newID = func() string { return "trip-1" }
	backend.BudgetRepository.now = func() time.Time { return fixedNow }
	backend.BudgetRepository.newID = func() string { return "budget-1" }
	return backend, mock
}

func strPtr(s string) *string { return &s }

func TestTripRepository_Insert(t *testing.T) {
	backend, mock := newMockBackend(t)
	ticket := decimal.RequireFromString("3500.50")

	mock.ExpectExec(`INSERT INTO trips \(id,user_id,travel_date,destination_country,destination_city,cost_tickets,cost_lodging,cost_daily_allowances,cost_center,trip_type,created_at\) VALUES \(\?,\?,\?,\?,\?,\?,\?,\?,\?,\?,\?\)`).
		WithArgs("trip-1", "user-1", "2025-05-24", "Portugal", "Lisboa", "3500.5", nil, nil, "TI", "Intercontinental", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := backend.Insert(context.Background(), entity.TripInsertPayload{
		UserID:             "user-1",
		TravelDate:         strPtr("2025-05-24"),
		DestinationCountry: strPtr("Portugal"),
		DestinationCity:    strPtr("Lisboa"),
		CostTickets:        &ticket,
		CostCenter:         strPtr("TI"),
		TripType:           strPtr("Intercontinental"),
	})

	require.NoError(t, err)
	assert.Equal(t, "trip-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_InsertRequiresOwner(t *testing.T) {
	backend, mock := newMockBackend(t)

	_, err := backend.Insert(context.Background(), entity.TripInsertPayload{})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_InsertError(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectExec(`INSERT INTO trips`).WillReturnError(errors.New("database is locked"))

	_, err := backend.Insert(context.Background(), entity.TripInsertPayload{UserID: "user-1"})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_ListTrips(t *testing.T) {
	backend, mock := newMockBackend(t)
	from := entity.NewDate(2025, time.January, 1)
	to := entity.NewDate(2025, time.December, 31)

	rows := sqlmock.NewRows(tripColumns).
		AddRow("trip-1", "user-1", "2025-05-24", "Portugal", "Lisboa", "3500.5", nil, "120", "TI", "Intercontinental", fixedNow)

	mock.ExpectQuery(`SELECT (.+) FROM trips WHERE user_id = \? AND trip_type = \? AND travel_date >= \? AND travel_date <= \? ORDER BY created_at DESC LIMIT 20`).
		WithArgs("user-1", "Intercontinental", "2025-01-01", "2025-12-31").
		WillReturnRows(rows)

	trips, err := backend.ListTrips(context.Background(), entity.TripFilter{
		UserID:   "user-1",
		TripType: "Intercontinental",
		From:     &from,
		To:       &to,
		Limit:    20,
	})

	require.NoError(t, err)
	require.Len(t, trips, 1)
	trip := trips[0]
	assert.Equal(t, "trip-1", trip.ID)
	require.NotNil(t, trip.CostTickets)
	assert.Equal(t, "3500.5", trip.CostTickets.String())
	assert.Nil(t, trip.CostLodging)
	assert.True(t, decimal.RequireFromString("3620.5").Equal(trip.Total()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_ListTripsError(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectQuery(`SELECT (.+) FROM trips`).WillReturnError(errors.New("no such table: trips"))

	_, err := backend.ListTrips(context.Background(), entity.TripFilter{})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_Save(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectExec(`INSERT INTO budgets \(id,year,month,trip_type,budget_amount,created_at\) VALUES \(\?,\?,\?,\?,\?,\?\) ON CONFLICT \(year, month, trip_type\) DO UPDATE SET budget_amount = excluded.budget_amount`).
		WithArgs("budget-1", 2025, 0, "Nacional", "50000", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	budget := &entity.Budget{Year: 2025, TripType: "Nacional", BudgetAmount: decimal.NewFromInt(50000)}
	require.NoError(t, backend.Save(context.Background(), budget))

	assert.Equal(t, "budget-1", budget.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_SaveValidation(t *testing.T) {
	backend, _ := newMockBackend(t)

	assert.Error(t, backend.Save(context.Background(), &entity.Budget{TripType: "Nacional"}))
	assert.Error(t, backend.Save(context.Background(), &entity.Budget{Year: 2025}))
}

func TestBudgetRepository_ListBudgets(t *testing.T) {
	backend, mock := newMockBackend(t)

	rows := sqlmock.NewRows(budgetColumns).
		AddRow("budget-1", 2025, 0, "Nacional", "50000", fixedNow).
		AddRow("budget-2", 2025, 0, "Continental", "30000.75", fixedNow)

	mock.ExpectQuery(`SELECT (.+) FROM budgets WHERE year = \? ORDER BY year DESC, month DESC`).
		WithArgs(2025).
		WillReturnRows(rows)

	budgets, err := backend.ListBudgets(context.Background(), 2025)

	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "Continental", budgets[1].TripType)
	assert.True(t, decimal.RequireFromString("30000.75").Equal(budgets[1].BudgetAmount))
	assert.NoError(t, mock.ExpectationsWereMet())
}
