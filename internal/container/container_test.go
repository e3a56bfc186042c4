package container

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/trip-expenses/internal/application/wizard"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

func sqliteConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "trips.db")
	cfg.Persistence.Budgets = []entity.Budget{
		{Year: 2025, TripType: "Nacional", BudgetAmount: decimal.NewFromInt(10000)},
	}
	cfg.Server.Enabled = true
	cfg.Server.JWTSecret = "test-secret"
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Persistence.Driver = DriverSupabase
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Server.Enabled = true
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_StartAndClose(t *testing.T) {
	c, err := NewContainer(sqliteConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx))

	assert.NotNil(t, c.Services().Chat)
	assert.NotNil(t, c.Services().Dashboard)
	assert.NotNil(t, c.HTTPServer())
	assert.Equal(t, 1, c.Workers().Count())

	health := c.Health(ctx)
	assert.True(t, health.Overall, "%+v", health.Components)

	budgets, err := c.Backend().ListBudgets(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.True(t, budgets[0].BudgetAmount.Equal(decimal.NewFromInt(10000)))

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestContainer_ChatSavesToSQLite(t *testing.T) {
	c, err := NewContainer(sqliteConfig(t), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Close()

	chat := c.Services().Chat
	session, err := chat.StartSession(ctx, "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	var last wizard.Reply
	for _, in := range []string{"24/05/2025", "Portugal", "Lisboa", "3500", "1200", "450", "TI", "sim"} {
		result, err := chat.SendMessage(ctx, "user-1", session.ID, in)
		require.NoError(t, err)
		last = result.Reply
	}
	require.Equal(t, wizard.OutcomeSaved, last.Outcome)

	trips, err := c.Backend().ListTrips(ctx, entity.TripFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, last.TripID, trips[0].ID)
	assert.Equal(t, "2025-05-24", *trips[0].TravelDate)
	assert.Equal(t, "Intercontinental", *trips[0].TripType)
	assert.True(t, trips[0].Total().Equal(decimal.NewFromInt(5150)))
}

func TestContainer_FailedStartReleasesResources(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.PromptsPath = filepath.Join(t.TempDir(), "missing.yaml")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.False(t, c.Ready())
	assert.Error(t, c.Start(context.Background()))
}

func TestInsertTimeout(t *testing.T) {
	assert.Equal(t, 8*time.Second, insertTimeout(10*time.Second))
	assert.Equal(t, 8*time.Second, insertTimeout(0))
	assert.Less(t, insertTimeout(3*time.Second), 3*time.Second)
}

func TestConvertToZapFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	adapter := &zapLoggerAdapter{logger: zap.New(core)}

	adapter.Error("save failed", "trip_id", "t1", "error", errors.New("boom"), 42, "ignored", "dangling")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t1", fields["trip_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.Len(t, fields, 2)
}

func TestZapLoggerAdapter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := &zapLoggerAdapter{logger: zap.New(core)}

	adapter.Info("started")
	adapter.Warn("fallback", "error", errors.New("timeout"))
	adapter.Error("failed")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "timeout", entries[1].ContextMap()["error"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
