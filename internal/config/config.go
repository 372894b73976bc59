package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPPort    string
	ServiceName string

	// Identity provider (Appwrite-compatible) endpoint and credentials.
	// APIKey is the service secret used only by the admin handle.
	Endpoint  string
	ProjectID string
	APIKey    string

	// Users collection holding the identity records.
	DatabaseID        string
	UsersCollectionID string

	// AvatarPlaceholderURL is assigned to new identity records. When empty the
	// provider's initials avatar endpoint is used instead.
	AvatarPlaceholderURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// OTP issuance throttling, per email address.
	OTPMaxPerWindow   int
	OTPThrottleWindow time.Duration

	RateLimitRPM int

	TelemetryEndpoint string
	TelemetryInsecure bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		ServiceName:          getEnv("SERVICE_NAME", "storeit-auth"),
		Endpoint:             strings.TrimRight(strings.TrimSpace(os.Getenv("APPWRITE_ENDPOINT")), "/"),
		ProjectID:            strings.TrimSpace(os.Getenv("APPWRITE_PROJECT_ID")),
		APIKey:               strings.TrimSpace(os.Getenv("APPWRITE_API_KEY")),
		DatabaseID:           strings.TrimSpace(os.Getenv("APPWRITE_DATABASE_ID")),
		UsersCollectionID:    strings.TrimSpace(os.Getenv("APPWRITE_USERS_COLLECTION_ID")),
		AvatarPlaceholderURL: strings.TrimSpace(os.Getenv("AVATAR_PLACEHOLDER_URL")),
		RedisAddr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getInt("REDIS_DB", 0),
		OTPMaxPerWindow:      getInt("OTP_MAX_PER_WINDOW", 5),
		OTPThrottleWindow:    getDuration("OTP_THROTTLE_WINDOW", 15*time.Minute),
		RateLimitRPM:         getInt("RATE_LIMIT_RPM", 600),
		TelemetryEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	if cfg.Endpoint == "" {
		return Config{}, fmt.Errorf("APPWRITE_ENDPOINT is required")
	}
	if cfg.ProjectID == "" {
		return Config{}, fmt.Errorf("APPWRITE_PROJECT_ID is required")
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("APPWRITE_API_KEY is required")
	}
	if cfg.DatabaseID == "" {
		return Config{}, fmt.Errorf("APPWRITE_DATABASE_ID is required")
	}
	if cfg.UsersCollectionID == "" {
		return Config{}, fmt.Errorf("APPWRITE_USERS_COLLECTION_ID is required")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
