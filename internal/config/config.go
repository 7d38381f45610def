package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "supersecretkey"
)

type Config struct {
	Port string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// MigrateOnStart applies the embedded schema migrations before serving.
	MigrateOnStart bool

	JWTSecret string

	// Env is "development" (default) or "production". In production the session
	// cookie carries the Secure flag and JWT_SECRET must not be the default.
	Env string

	// JWTExpireHours is the session lifetime in hours (default 360, i.e. 15 days).
	JWTExpireHours int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// CORSAllowedOrigins is set via CORS_ALLOWED_ORIGINS (comma-separated).
	// When empty, no CORS headers are sent.
	CORSAllowedOrigins []string

	// EventRetentionDays bounds how long signup/login events are kept (default 90).
	EventRetentionDays int
	// EventPruneSchedule is the cron expression for pruning old events (default "@daily").
	EventPruneSchedule string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is loaded first; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBName:    getEnv("DB_NAME", "socialdb"),
		DBUser:    getEnv("DB_USER", "socialuser"),
		DBPass:    getEnv("DB_PASS", "socialpass"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		Env:            normalizeEnv(getEnv("ENV", EnvDevelopment)),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 360),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),

		EventRetentionDays: getEnvInt("EVENT_RETENTION_DAYS", 90),
		EventPruneSchedule: getEnv("EVENT_PRUNE_SCHEDULE", "@daily"),
	}
}

// Validate rejects configurations that are unsafe to serve with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set to a non-default value in production")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// TokenTTL is the validity window of a session token and its cookie.
func (c Config) TokenTTL() time.Duration {
	if c.JWTExpireHours <= 0 {
		return 360 * time.Hour
	}
	return time.Duration(c.JWTExpireHours) * time.Hour
}

// EventRetention is how long auth events are kept before pruning.
func (c Config) EventRetention() time.Duration {
	if c.EventRetentionDays <= 0 {
		return 90 * 24 * time.Hour
	}
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// DSN is the lib/pq keyword/value connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass, c.sslMode(),
	)
}

// DatabaseURL is the postgres:// form used by golang-migrate.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.sslMode()),
	}
	return u.String()
}

func (c Config) sslMode() string {
	if c.DBSSLMode == "" {
		return "disable"
	}
	return c.DBSSLMode
}

// normalizeEnv accepts the short forms "dev" and "prod" as well.
func normalizeEnv(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", EnvProduction:
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
