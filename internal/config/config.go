package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	// DefaultJWTSecret is only acceptable when Env is "dev".
	DefaultJWTSecret = "dev-secret"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080" validate:"required,numeric"`

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string `env:"ENV" envDefault:"dev" validate:"oneof=dev prod"`

	// Storage selects the backend: "postgres" (default) or "memory". Memory loses sessions on restart.
	Storage string `env:"STORAGE" envDefault:"postgres" validate:"oneof=postgres memory"`

	// DBDriver is the database/sql driver name: "postgres" (lib/pq) or "pgx" (jackc/pgx stdlib).
	DBDriver  string `env:"DB_DRIVER" envDefault:"postgres" validate:"oneof=postgres pgx"`
	DBHost    string `env:"DB_HOST" envDefault:"localhost"`
	DBPort    string `env:"DB_PORT" envDefault:"5432"`
	DBName    string `env:"DB_NAME" envDefault:"reminders"`
	DBUser    string `env:"DB_USER" envDefault:"reminders"`
	DBPass    string `env:"DB_PASS" envDefault:"reminders"`
	DBSSLMode string `env:"DB_SSLMODE" envDefault:"disable"`

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" envDefault:"25" validate:"gte=0"`
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" envDefault:"5" validate:"gte=0"`

	// DBMigrate applies the embedded migrations on server start.
	DBMigrate bool `env:"DB_MIGRATE" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10" validate:"gte=4,lte=31"`

	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"reminders_session" validate:"required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// SessionPruneCron is a cron expression for deleting expired sessions. Empty disables the job.
	SessionPruneCron string `env:"SESSION_PRUNE_CRON"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret" validate:"required"`

	// SeedDemoUser creates SeedUsername/SeedPassword on start. Ignored unless Env is "dev".
	SeedDemoUser bool   `env:"SEED_DEMO_USER" envDefault:"false"`
	SeedUsername string `env:"SEED_USERNAME" envDefault:"tim"`
	SeedPassword string `env:"SEED_PASSWORD" envDefault:"tim"`

	// LoginRatePerMin limits POST /login and /api/login per client IP. 0 disables the limiter.
	LoginRatePerMin int `env:"LOGIN_RATE_PER_MIN" envDefault:"10" validate:"gte=0"`
	LoginBurst      int `env:"LOGIN_BURST" envDefault:"5" validate:"gte=0"`

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Only enable it when
	// the server is reachable solely through a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// CORSAllowedOrigins is a list of origins allowed for CORS on /api (e.g. http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// Load reads an optional .env file, parses the environment and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSAllowedOrigins = trimOrigins(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the production rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.SessionPruneCron != "" {
		if _, err := cron.ParseStandard(c.SessionPruneCron); err != nil {
			return fmt.Errorf("invalid config: SESSION_PRUNE_CRON: %w", err)
		}
	}
	if c.IsProd() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("invalid config: JWT_SECRET must be set in prod")
		}
		if c.Storage == StorageMemory {
			return errors.New("invalid config: STORAGE=memory is not allowed in prod")
		}
	}
	return nil
}

func (c Config) IsProd() bool { return c.Env == EnvProd }

// SeedEnabled reports whether the demo user should be created on start.
func (c Config) SeedEnabled() bool {
	return c.SeedDemoUser && c.Env == EnvDev
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DSN returns a key/value connection string accepted by both lib/pq and pgx.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass, c.DBSSLMode,
	)
}

// MigrateURL returns the postgres:// URL golang-migrate expects.
func (c Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// trimOrigins trims spaces and drops empty entries.
func trimOrigins(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, p := range in {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
