package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           string
	OTelEnabled        bool
	TrackInterval      time.Duration
	// AllowedOrigins lists browser origins besides the API's own that may open the tracking websocket.
	AllowedOrigins []string

	Backend BackendConfig
	Redis   RedisConfig
	DB      DBConfig
	Kafka   KafkaConfig
	Pricing PricingConfig
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	WizardTTL time.Duration
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	MigrationsPath string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type PricingConfig struct {
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		OTelEnabled:        getBool("OTEL_ENABLED", false),
		TrackInterval:      getDuration("TRACK_INTERVAL", 5*time.Second),
		AllowedOrigins:     getList("ALLOWED_ORIGINS"),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
			Timeout: getDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			WizardTTL: getDuration("WIZARD_TTL", 30*time.Minute),
		},
		DB: DBConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "storefront"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "storefront-events"),
		},
		Pricing: PricingConfig{
			FlatShippingFee:       getDecimal("FLAT_SHIPPING_FEE", decimal.NewFromInt(10)),
			FreeShippingThreshold: getDecimal("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(100)),
			TaxRate:               getDecimal("TAX_RATE", decimal.RequireFromString("0.08")),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
