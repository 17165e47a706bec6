package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	SLA      SLAConfig
	Sweep    SweepConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token verification parameters. Tokens are issued
// by the platform's identity service; this service only verifies them.
type AuthConfig struct {
	JWTSecret string
}

// SLAConfig tunes SLA health classification and policy caching.
type SLAConfig struct {
	WarningFraction       float64
	WarningWindowMinutes  int
	PolicyCacheTTLSeconds int
}

// SweepConfig gates the optional periodic breach sweep. Disabled by default:
// SLA health is recomputed lazily on read and the sweep only exists to push
// breach events to notification consumers.
type SweepConfig struct {
	Enabled         bool
	Schedule        string
	DedupTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "msp-itsm-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", "dev-secret"),
		},
		SLA: SLAConfig{
			WarningFraction:       getEnvAsFloat("SLA_WARNING_FRACTION", 0.2),
			WarningWindowMinutes:  getEnvAsInt("SLA_WARNING_WINDOW_MINUTES", 0),
			PolicyCacheTTLSeconds: getEnvAsInt("SLA_POLICY_CACHE_TTL_SECONDS", 60),
		},
		Sweep: SweepConfig{
			Enabled:         getEnvAsBool("SLA_SWEEP_ENABLED", false),
			Schedule:        getEnv("SLA_SWEEP_SCHEDULE", "@every 5m"),
			DedupTTLMinutes: getEnvAsInt("SLA_SWEEP_DEDUP_TTL_MINUTES", 360),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// WarningWindow returns the fixed warning window, zero when the fractional
// window is in effect.
func (s SLAConfig) WarningWindow() time.Duration {
	if s.WarningWindowMinutes <= 0 {
		return 0
	}
	return time.Duration(s.WarningWindowMinutes) * time.Minute
}

// PolicyCacheTTL returns the TTL for cached active policies.
func (s SLAConfig) PolicyCacheTTL() time.Duration {
	if s.PolicyCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.PolicyCacheTTLSeconds) * time.Second
}

// DedupTTL returns how long a published breach is remembered.
func (s SweepConfig) DedupTTL() time.Duration {
	if s.DedupTTLMinutes <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(s.DedupTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
