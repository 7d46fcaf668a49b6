package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string
	GinMode    string
	LogLevel   string
	Env        string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// TaskReviewRequired routes work submissions through an intermediate
	// "review" state that a manager must approve, instead of completing
	// the task immediately.
	TaskReviewRequired bool

	// OutboxInterval is how often the background worker drains pending
	// notifications and sweeps overdue signature requests.
	OutboxInterval time.Duration

	OTPTTL time.Duration

	// StorageBaseURL is the public base URL of the object store serving
	// vault media.
	StorageBaseURL string
}

func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "agency"),
		DBPassword: getEnv("DB_PASSWORD", "agency"),
		DBName:     getEnv("DB_NAME", "agency_api"),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Env:        getEnv("APP_ENV", "development"),

		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		TaskReviewRequired: getBool("TASK_REVIEW_REQUIRED", false),

		OutboxInterval: getDuration("OUTBOX_INTERVAL", 5*time.Second),

		OTPTTL: getDuration("OTP_TTL", 10*time.Minute),

		StorageBaseURL: getEnv("STORAGE_BASE_URL", "https://storage.local"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
