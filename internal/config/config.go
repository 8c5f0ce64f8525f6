package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"gameanalysis"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Database  Database
	Redis     Redis
	AI        AI
	RateLimit RateLimit
	CORS      CORS
	Log       Log
}

// Database selects the record store. DB_DSN is a file path for sqlite and a
// connection string for postgres.
type Database struct {
	Driver       string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN          string `env:"DB_DSN" envDefault:"data/history.db"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// Redis backs the generated-draft cache. An empty address disables it.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:""`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DraftTTL time.Duration `env:"DRAFT_CACHE_TTL" envDefault:"10m"`
}

// AI configures the chat completions endpoint. Without an API key the
// generation routes answer 503.
type AI struct {
	BaseURL    string        `env:"AI_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	APIKey     string        `env:"DEEPSEEK_API_KEY" envDefault:""`
	Model      string        `env:"AI_MODEL" envDefault:"deepseek-chat"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	MaxRetries uint64        `env:"AI_MAX_RETRIES" envDefault:"2"`
	RetryBase  time.Duration `env:"AI_RETRY_BASE" envDefault:"2s"`
}

// Enabled reports whether generation can be offered.
func (a AI) Enabled() bool {
	return a.APIKey != "" && a.BaseURL != ""
}

// RateLimit bounds generation requests per client IP.
type RateLimit struct {
	PerMinute int `env:"AI_RATE_PER_MINUTE" envDefault:"10"`
	Burst     int `env:"AI_RATE_BURST" envDefault:"3"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Log controls the level and the optional rotated log file.
type Log struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE" envDefault:""`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase parses only the database section, for tools that do not need
// the rest of the configuration.
func LoadDatabase() (Database, error) {
	var db Database
	if err := env.ParseWithOptions(&db, env.Options{RequiredIfNoDef: true}); err != nil {
		return Database{}, fmt.Errorf("parse database config: %w", err)
	}
	if err := db.validate(); err != nil {
		return Database{}, err
	}
	return db, nil
}

func (c *App) validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("AI_RATE_PER_MINUTE and AI_RATE_BURST must not be negative")
	}
	return nil
}

func (d Database) validate() error {
	switch d.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", d.Driver)
	}
	if d.DSN == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	return nil
}
