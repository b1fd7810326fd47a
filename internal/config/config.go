package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Bootstrap     BootstrapConfig
	Reconcile     ReconcileConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
}

// BootstrapConfig seeds the reporting hotel on first start.
type BootstrapConfig struct {
	EnsureDefaultHotel bool
	HotelName          string
	HotelTotalRooms    int
}

// ReconcileConfig controls the nightly recalculation job.
type ReconcileConfig struct {
	Enabled  bool
	LockTTL  time.Duration
	Timezone string
}

// RateLimitConfig throttles imports, manual recalculation and exports per hotel.
type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
}

// ObservabilityConfig carries the raw logging and telemetry settings.
// observability.LoadConfig validates them.
type ObservabilityConfig struct {
	LogLevel           string
	LogFormat          string
	OtelEnabled        bool
	OtelEndpoint       string
	OtelProtocol       string
	OtelSamplingRatio  float64
	SlowQueryThreshold time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "benchstay"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "benchstay"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME_SECONDS", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME_SECONDS", 60),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
		Bootstrap: BootstrapConfig{
			EnsureDefaultHotel: getenvBool("BOOTSTRAP_DEFAULT_HOTEL", true),
			HotelName:          getenv("BOOTSTRAP_HOTEL_NAME", "Main Hotel"),
			HotelTotalRooms:    getenvInt("BOOTSTRAP_HOTEL_TOTAL_ROOMS", 100),
		},
		Reconcile: ReconcileConfig{
			Enabled:  getenvBool("RECONCILE_ENABLED", true),
			LockTTL:  time.Duration(getenvInt("RECONCILE_LOCK_TTL_SECONDS", 600)) * time.Second,
			Timezone: getenv("RECONCILE_TIMEZONE", "UTC"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getenvBool("RATE_LIMIT_ENABLED", false),
			Rate:    getenvFloat("RATE_LIMIT_RATE", 0.2),
			Burst:   getenvInt("RATE_LIMIT_BURST", 5),
		},
	}

	cfg.Observability = ObservabilityConfig{
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
		// Exporters dial the collector; local runs keep telemetry off unless asked.
		OtelEnabled:        getenvBool("OTEL_ENABLED", cfg.IsProduction()),
		OtelEndpoint:       getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelProtocol:       getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio:  getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		SlowQueryThreshold: time.Duration(getenvInt("DATABASE_SLOW_QUERY_MS", 200)) * time.Millisecond,
	}

	return cfg
}

// IsProduction reports whether the app runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
