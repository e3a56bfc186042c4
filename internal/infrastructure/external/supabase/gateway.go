package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// Table names in the hosted schema
const (
	TripsTable   = "trips"
	BudgetsTable = "budgets"
)

// TableClient is the part of the Supabase client the gateway uses.
// Both *supabase.Client and *postgrest.Client satisfy it.
type TableClient interface {
	From(table string) *postgrest.QueryBuilder
}

// Gateway implements port.TripBackend over Supabase's PostgREST API
type Gateway struct {
	client TableClient
	writer TableClient
	logger *zap.Logger
}

// NewClient connects to a Supabase project with a service or anon key
func NewClient(url, key string) (*supa.Client, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// NewWriteClient connects to the project's REST endpoint with requests that give up
// after timeout without response headers.
func NewWriteClient(url, key string, timeout time.Duration) (*postgrest.Client, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	client := postgrest.NewClient(url+supa.REST_URL, "public", map[string]string{
		"Authorization": "Bearer " + key,
		"apikey":        key,
	})
	return WithRequestTimeout(client, timeout), nil
}

// WithRequestTimeout makes client drop a request whose response headers do not
// arrive within timeout. A zero timeout leaves client unchanged.
func WithRequestTimeout(client *postgrest.Client, timeout time.Duration) *postgrest.Client {
	if timeout <= 0 {
		return client
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	client.Transport.Parent = transport
	return client
}

// NewGateway creates a new Supabase gateway
func NewGateway(client TableClient, logger *zap.Logger) *Gateway {
	return &Gateway{client: client, writer: client, logger: logger}
}

// WithWriter sends inserts through writer instead of the read client
func (g *Gateway) WithWriter(writer TableClient) *Gateway {
	g.writer = writer
	return g
}

// Insert stores a finalized trip and returns the ID assigned by the backend
func (g *Gateway) Insert(ctx context.Context, trip entity.TripInsertPayload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rows []entity.Trip
	type result struct {
		err error
	}
	done := make(chan result, 1)
	go func() {
		_, err := g.writer.From(TripsTable).
			Insert(trip, false, "", "representation", "").
			ExecuteTo(&rows)
		done <- result{err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Warn("Trip insert abandoned", zap.String("user_id", trip.UserID), zap.Error(ctx.Err()))
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			g.logger.Error("Failed to insert trip", zap.String("user_id", trip.UserID), zap.Error(res.err))
			return "", fmt.Errorf("failed to insert trip: %w", res.err)
		}
	}

	if len(rows) == 0 || rows[0].ID == "" {
		return "", fmt.Errorf("insert returned no trip id")
	}

	g.logger.Info("Trip inserted", zap.String("trip_id", rows[0].ID), zap.String("user_id", trip.UserID))
	return rows[0].ID, nil
}

// ListTrips returns trips matching filter, newest first
func (g *Gateway) ListTrips(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := g.client.From(TripsTable).Select("*", "", false)
	if filter.UserID != "" {
		query = query.Eq("user_id", filter.UserID)
	}
	if filter.TripType != "" {
		query = query.Eq("trip_type", filter.TripType)
	}
	if filter.CostCenter != "" {
		query = query.Eq("cost_center", filter.CostCenter)
	}
	if filter.From != nil {
		query = query.Gte("travel_date", filter.From.String())
	}
	if filter.To != nil {
		query = query.Lte("travel_date", filter.To.String())
	}
	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	var trips []*entity.Trip
	if _, err := query.ExecuteTo(&trips); err != nil {
		g.logger.Error("Failed to list trips", zap.Error(err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// ListBudgets returns budgets for year (0 for all), newest period first
func (g *Gateway) ListBudgets(ctx context.Context, year int) ([]*entity.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := g.client.From(BudgetsTable).Select("*", "", false)
	if year > 0 {
		query = query.Eq("year", strconv.Itoa(year))
	}
	query = query.
		Order("year", &postgrest.OrderOpts{Ascending: false}).
		Order("month", &postgrest.OrderOpts{Ascending: false})

	var budgets []*entity.Budget
	if _, err := query.ExecuteTo(&budgets); err != nil {
		g.logger.Error("Failed to list budgets", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}
