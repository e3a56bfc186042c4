package config

import (
	"github.com/shopspring/decimal"

	"github.com/garyjia/trip-expenses/internal/container"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/infrastructure/session"
)

// ToContainerConfig converts the application Config to a container.Config
// with the HTTP server enabled.
func (c *Config) ToContainerConfig() *container.Config {
	budgets := make([]entity.Budget, 0, len(c.Budgets))
	for _, b := range c.Budgets {
		budgets = append(budgets, entity.Budget{
			Year:         b.Year,
			Month:        b.Month,
			TripType:     b.TripType,
			BudgetAmount: decimal.NewFromFloat(b.Amount),
		})
	}

	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Persistence: container.PersistenceConfig{
			Driver:      c.Persistence.Driver,
			SupabaseURL: c.Supabase.URL,
			SupabaseKey: c.Supabase.Key,
			Budgets:     budgets,
		},
		OpenAI: container.OpenAIConfig{
			APIKey:      c.OpenAI.APIKey,
			BaseURL:     c.OpenAI.BaseURL,
			Model:       c.OpenAI.Model,
			Temperature: c.OpenAI.Temperature,
			MaxTokens:   c.OpenAI.MaxTokens,
			Timeout:     c.OpenAI.Timeout,
			PromptsPath: c.OpenAI.PromptsPath,
		},
		Wizard: container.WizardConfig{
			HomeCountry:          c.Wizard.HomeCountry,
			ContinentalCountries: c.Wizard.ContinentalCountries,
			SubmitTimeout:        c.Wizard.SubmitTimeout,
			DefaultMode:          entity.EntryMode(c.Wizard.DefaultMode),
		},
		Sessions: container.SessionsConfig{
			Driver:        c.Sessions.Driver,
			TTL:           c.Sessions.TTL,
			SweepInterval: c.Sessions.SweepInterval,
			Redis: session.RedisConfig{
				Address:      c.Sessions.Redis.Address,
				Password:     c.Sessions.Redis.Password,
				DB:           c.Sessions.Redis.DB,
				PoolSize:     c.Sessions.Redis.PoolSize,
				MinIdleConns: c.Sessions.Redis.MinIdleConns,
			},
		},
		Server: container.ServerConfig{
			Enabled:        true,
			Host:           c.Server.Host,
			Port:           c.Server.Port,
			ReadTimeout:    c.Server.ReadTimeout,
			WriteTimeout:   c.Server.WriteTimeout,
			AllowedOrigins: c.Server.AllowedOrigins,
			JWTSecret:      c.Supabase.JWTSecret,
		},
	}
}
