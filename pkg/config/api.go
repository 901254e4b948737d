package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"
)

const defaultJWTSecret = "supersecuresecret"

// MaxPoolConns bounds DB_POOL_SIZE + DB_MAX_OVERFLOW.
const MaxPoolConns = 1000

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment    string
	Addr           string
	LogLevel       slog.Level
	DatabaseURL    string
	DBPoolSize     int
	DBMaxOverflow  int
	DBPoolTimeout  time.Duration
	MigrationsDir  string
	AutoMigrate    bool
	JWTSecret      string
	AccessTokenTTL time.Duration
	CookieSecure   bool
}

// LoadAPIConfig constructs an APIConfig from environment variables, after
// overlaying any .env file found in the working directory.
func LoadAPIConfig() APIConfig {
	LoadEnvFiles(".env")
	return APIConfig{
		Environment:    GetString("APP_ENV", "development"),
		Addr:           GetString("API_ADDR", ":8000"),
		LogLevel:       parseLevel(GetString("LOG_LEVEL", "info")),
		DatabaseURL:    databaseURL(),
		DBPoolSize:     GetInt("DB_POOL_SIZE", 5),
		DBMaxOverflow:  GetInt("DB_MAX_OVERFLOW", 10),
		DBPoolTimeout:  time.Duration(GetInt("DB_POOL_TIMEOUT", 30)) * time.Second,
		MigrationsDir:  GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		AutoMigrate:    GetBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      GetFirstString(defaultJWTSecret, "JWT_SECRET", "SECRET_KEY"),
		AccessTokenTTL: time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		CookieSecure:   GetBool("COOKIE_SECURE", true),
	}
}

// Validate rejects configurations that are unsafe to run.
func (c APIConfig) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Environment == "production" && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be overridden in production")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL or DB_HOST/DB_NAME is required")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive, got %s", c.AccessTokenTTL)
	}
	if c.DBPoolSize < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be at least 1, got %d", c.DBPoolSize)
	}
	if c.DBPoolSize > MaxPoolConns || c.DBMaxOverflow > MaxPoolConns-c.DBPoolSize {
		return fmt.Errorf("DB_POOL_SIZE + DB_MAX_OVERFLOW must not exceed %d", MaxPoolConns)
	}
	return nil
}

// MaxConns is the pool ceiling: the steady pool plus the allowed overflow.
func (c APIConfig) MaxConns() int32 {
	overflow := c.DBMaxOverflow
	if overflow < 0 {
		overflow = 0
	}
	pool := c.DBPoolSize
	if pool > MaxPoolConns {
		pool = MaxPoolConns
	}
	if overflow > MaxPoolConns-pool {
		overflow = MaxPoolConns - pool
	}
	return int32(pool + overflow)
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from DB_* parts.
func databaseURL() string {
	if dsn := strings.TrimSpace(GetString("DATABASE_URL", "")); dsn != "" {
		return dsn
	}
	host := GetString("DB_HOST", "localhost")
	name := GetString("DB_NAME", "quill")
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(GetString("DB_USER", "postgres"), GetString("DB_PASSWORD", "postgres")),
		Host:     net.JoinHostPort(host, GetString("DB_PORT", "5432")),
		Path:     "/" + name,
		RawQuery: "sslmode=" + GetString("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}
