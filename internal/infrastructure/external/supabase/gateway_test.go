package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := postgrest.NewClient(srv.URL, "public", map[string]string{"apikey": "test-key"})
	return NewGateway(client, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", "")
	assert.Error(t, err)
}

func TestInsert(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/"+TripsTable))
		assert.Contains(t, r.Header.Get("Prefer"), "return=representation")

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user-1", body["user_id"])
		assert.Equal(t, "2025-05-24", body["travel_date"])
		assert.Equal(t, "Nacional", body["trip_type"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": "7b1c", "user_id": "user-1", "created_at": "2025-05-24T10:00:00Z"}]`))
	})

	ticket := decimal.NewFromInt(800)
	id, err := gw.Insert(context.Background(), entity.TripInsertPayload{
		UserID:      "user-1",
		TravelDate:  strPtr("2025-05-24"),
		CostTickets: &ticket,
		TripType:    strPtr("Nacional"),
	})

	require.NoError(t, err)
	assert.Equal(t, "7b1c", id)
}

func TestInsert_BackendError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "23502", "message": "null value in column", "details": null, "hint": null}`))
	})

	_, err := gw.Insert(context.Background(), entity.TripInsertPayload{UserID: "user-1"})
	assert.Error(t, err)
}

func TestInsert_SlowBackendRequestIsDropped(t *testing.T) {
	dropped := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			close(dropped)
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	reader := postgrest.NewClient(srv.URL, "public", nil)
	writer := WithRequestTimeout(postgrest.NewClient(srv.URL, "public", nil), 50*time.Millisecond)
	gw := NewGateway(reader, zap.NewNop()).WithWriter(writer)

	start := time.Now()
	_, err := gw.Insert(context.Background(), entity.TripInsertPayload{UserID: "user-1"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	select {
	case <-dropped:
	case <-time.After(2 * time.Second):
		t.Fatal("backend request was not dropped")
	}
}

func TestNewWriteClient_RequiresCredentials(t *testing.T) {
	_, err := NewWriteClient("", "key", time.Second)
	assert.Error(t, err)

	client, err := NewWriteClient("https://project.supabase.co", "key", time.Second)
	require.NoError(t, err)
	assert.NotNil(t, client.Transport.Parent)
}

func TestInsert_CanceledContext(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Insert(ctx, entity.TripInsertPayload{UserID: "user-1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListTrips(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "eq.user-1", q.Get("user_id"))
		assert.Equal(t, "eq.TI", q.Get("cost_center"))
		assert.Equal(t, "gte.2025-01-01", q.Get("travel_date"))
		assert.Equal(t, "10", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "t1", "user_id": "user-1", "travel_date": "2025-05-24", "cost_tickets": 3500.5,
			 "cost_lodging": null, "trip_type": "Intercontinental", "cost_center": "TI",
			 "created_at": "2025-05-24T10:00:00.123456+00:00"}
		]`))
	})

	from := entity.NewDate(2025, 1, 1)
	trips, err := gw.ListTrips(context.Background(), entity.TripFilter{
		UserID:     "user-1",
		CostCenter: "TI",
		From:       &from,
		Limit:      10,
	})

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "t1", trips[0].ID)
	require.NotNil(t, trips[0].CostTickets)
	assert.Equal(t, "3500.5", trips[0].CostTickets.String())
	assert.Nil(t, trips[0].CostLodging)
}

func TestListBudgets(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/"+BudgetsTable))
		assert.Equal(t, "eq.2025", r.URL.Query().Get("year"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "b1", "year": 2025, "month": null, "trip_type": "Nacional", "budget_amount": 50000}]`))
	})

	budgets, err := gw.ListBudgets(context.Background(), 2025)

	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, 0, budgets[0].Month)
	assert.True(t, decimal.NewFromInt(50000).Equal(budgets[0].BudgetAmount))
}
