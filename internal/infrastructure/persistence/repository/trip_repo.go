package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

var tripColumns = []string{
	"id", "user_id", "travel_date", "destination_country", "destination_city",
	"cost_tickets", "cost_lodging", "cost_daily_allowances", "cost_center", "trip_type", "created_at",
}

// TripRepository stores trips in the local sqlite database
type TripRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB, logger *zap.Logger) *TripRepository {
	return &TripRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Insert stores a finalized trip and returns its generated ID
func (r *TripRepository) Insert(ctx context.Context, trip entity.TripInsertPayload) (string, error) {
	if trip.UserID == "" {
		return "", fmt.Errorf("trip owner is required")
	}

	id := r.newID()
	query, args, err := psql.Insert("trips").
		Columns(tripColumns...).
		Values(
			id,
			trip.UserID,
			nullString(trip.TravelDate),
			nullString(trip.DestinationCountry),
			nullString(trip.DestinationCity),
			nullDecimal(trip.CostTickets),
			nullDecimal(trip.CostLodging),
			nullDecimal(trip.CostDailyAllowances),
			nullString(trip.CostCenter),
			nullString(trip.TripType),
			r.now().UTC(),
		).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert trip", zap.String("user_id", trip.UserID), zap.Error(err))
		return "", fmt.Errorf("failed to insert trip: %w", err)
	}

	r.logger.Info("Trip inserted", zap.String("trip_id", id), zap.String("user_id", trip.UserID))
	return id, nil
}

// ListTrips returns trips matching filter, newest first
func (r *TripRepository) ListTrips(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error) {
	builder := psql.Select(tripColumns...).From("trips")
	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.TripType != "" {
		builder = builder.Where(sq.Eq{"trip_type": filter.TripType})
	}
	if filter.CostCenter != "" {
		builder = builder.Where(sq.Eq{"cost_center": filter.CostCenter})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"travel_date": filter.From.String()})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{"travel_date": filter.To.String()})
	}
	builder = builder.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list trips", zap.Error(err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*entity.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, nil
}

func scanTrip(rows *sql.Rows) (*entity.Trip, error) {
	var (
		trip                              entity.Trip
		travelDate, country, city, cc, tt sql.NullString
		tickets, lodging, allowances      decimal.NullDecimal
	)
	err := rows.Scan(
		&trip.ID, &trip.UserID, &travelDate, &country, &city,
		&tickets, &lodging, &allowances, &cc, &tt, &trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	trip.TravelDate = stringPtr(travelDate)
	trip.DestinationCountry = stringPtr(country)
	trip.DestinationCity = stringPtr(city)
	trip.CostTickets = decimalPtr(tickets)
	trip.CostLodging = decimalPtr(lodging)
	trip.CostDailyAllowances = decimalPtr(allowances)
	trip.CostCenter = stringPtr(cc)
	trip.TripType = stringPtr(tt)
	return &trip, nil
}
