package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Persistence drivers
const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
)

// Session store drivers
const (
	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Supabase    SupabaseConfig    `mapstructure:"supabase"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Wizard      WizardConfig      `mapstructure:"wizard"`
	Sessions    SessionsConfig    `mapstructure:"sessions"`
	Budgets     []BudgetConfig    `mapstructure:"budgets"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the local sqlite configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// PersistenceConfig selects the trip backend
type PersistenceConfig struct {
	Driver string `mapstructure:"driver"`
}

// SupabaseConfig holds the hosted backend credentials
type SupabaseConfig struct {
	URL       string `mapstructure:"url"`
	Key       string `mapstructure:"key"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PromptsPath string        `mapstructure:"prompts_path"`
}

// WizardConfig tunes the trip-entry conversation
type WizardConfig struct {
	HomeCountry          string        `mapstructure:"home_country"`
	ContinentalCountries []string      `mapstructure:"continental_countries"`
	SubmitTimeout        time.Duration `mapstructure:"submit_timeout"`
	DefaultMode          string        `mapstructure:"default_mode"`
}

// SessionsConfig selects where chat sessions live between messages
type SessionsConfig struct {
	Driver        string        `mapstructure:"driver"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Redis         RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// BudgetConfig is a planned spend loaded into the local backend on start
type BudgetConfig struct {
	Year     int     `mapstructure:"year"`
	Month    int     `mapstructure:"month"`
	TripType string  `mapstructure:"trip_type"`
	Amount   float64 `mapstructure:"amount"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// An empty path skips the file and uses defaults plus environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.path", "data/trips.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("persistence.driver", DriverSupabase)

	// OpenAI defaults
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.timeout", 8*time.Second)

	// Wizard defaults
	v.SetDefault("wizard.home_country", "Brasil")
	v.SetDefault("wizard.submit_timeout", 10*time.Second)
	v.SetDefault("wizard.default_mode", "guided")

	// Session defaults
	v.SetDefault("sessions.driver", SessionDriverMemory)
	v.SetDefault("sessions.ttl", 2*time.Hour)
	v.SetDefault("sessions.sweep_interval", 5*time.Minute)
	v.SetDefault("sessions.redis.address", "localhost:6379")
	v.SetDefault("sessions.redis.pool_size", 10)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds sensitive credentials to their conventional variable names
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"openai.api_key":          "OPENAI_API_KEY",
		"supabase.url":            "SUPABASE_URL",
		"supabase.key":            "SUPABASE_KEY",
		"supabase.jwt_secret":     "SUPABASE_JWT_SECRET",
		"sessions.redis.password": "REDIS_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Persistence.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("supabase.url is required")
		}
		if c.Supabase.Key == "" {
			return fmt.Errorf("supabase.key is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	default:
		return fmt.Errorf("unknown persistence.driver %q", c.Persistence.Driver)
	}

	switch c.Sessions.Driver {
	case SessionDriverMemory:
	case SessionDriverRedis:
		if c.Sessions.Redis.Address == "" {
			return fmt.Errorf("sessions.redis.address is required")
		}
	default:
		return fmt.Errorf("unknown sessions.driver %q", c.Sessions.Driver)
	}

	switch c.Wizard.DefaultMode {
	case "", "guided", "free_text":
	default:
		return fmt.Errorf("unknown wizard.default_mode %q", c.Wizard.DefaultMode)
	}

	for i, b := range c.Budgets {
		if b.Year == 0 || b.TripType == "" {
			return fmt.Errorf("budgets[%d]: year and trip_type are required", i)
		}
		if b.Month < 0 || b.Month > 12 {
			return fmt.Errorf("budgets[%d]: month must be 0-12", i)
		}
	}

	return nil
}
