// Package container provides dependency injection and lifecycle management
// for the trip expense assistant.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/infrastructure/session"
)

// Persistence and session drivers understood by the providers
const (
	DriverSupabase      = "supabase"
	DriverSQLite        = "sqlite"
	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

// Config holds all configuration for the Container.
type Config struct {
	Database    DatabaseConfig
	Persistence PersistenceConfig
	OpenAI      OpenAIConfig
	Wizard      WizardConfig
	Sessions    SessionsConfig
	Server      ServerConfig
}

// DatabaseConfig holds sqlite connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file or ":memory:"
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PersistenceConfig selects and configures the trip backend.
type PersistenceConfig struct {
	// Driver is DriverSupabase or DriverSQLite
	Driver      string
	SupabaseURL string
	SupabaseKey string

	// Budgets are upserted into the sqlite backend on start
	Budgets []entity.Budget
}

// OpenAIConfig holds completion client settings. An empty APIKey disables AI extraction.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	// PromptsPath optionally points at a YAML prompts file
	PromptsPath string
}

// WizardConfig tunes the conversation.
type WizardConfig struct {
	HomeCountry          string
	ContinentalCountries []string
	SubmitTimeout        time.Duration
	DefaultMode          entity.EntryMode
}

// SessionsConfig selects the session store and idle sweeping.
type SessionsConfig struct {
	Driver string

	// TTL is the idle lifetime of a session
	TTL time.Duration

	// SweepInterval is how often idle in-memory sessions are removed
	SweepInterval time.Duration

	Redis session.RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Enabled builds the HTTP server; the terminal shell runs without it
	Enabled bool

	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string

	// JWTSecret verifies access tokens
	JWTSecret string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/trips.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Persistence: PersistenceConfig{
			Driver: DriverSQLite,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			MaxTokens:   500,
			Timeout:     8 * time.Second,
		},
		Wizard: WizardConfig{
			HomeCountry:   "Brasil",
			SubmitTimeout: 10 * time.Second,
			DefaultMode:   entity.EntryModeGuided,
		},
		Sessions: SessionsConfig{
			Driver:        SessionDriverMemory,
			TTL:           2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	switch c.Persistence.Driver {
	case DriverSupabase:
		if c.Persistence.SupabaseURL == "" || c.Persistence.SupabaseKey == "" {
			return fmt.Errorf("supabase url and key are required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required")
		}
	default:
		return fmt.Errorf("unknown persistence driver %q", c.Persistence.Driver)
	}

	switch c.Sessions.Driver {
	case SessionDriverMemory, SessionDriverRedis:
	default:
		return fmt.Errorf("unknown session driver %q", c.Sessions.Driver)
	}

	if c.Server.Enabled && c.Server.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required for the HTTP server")
	}

	return nil
}
