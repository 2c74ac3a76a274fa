package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// StorageConfig describes the external object storage (image host) account.
type StorageConfig struct {
	BaseURL   string `env:"STORAGE_BASE_URL"`
	CloudName string `env:"STORAGE_CLOUD_NAME"`
	APIKey    string `env:"STORAGE_API_KEY"`
	APISecret string `env:"STORAGE_API_SECRET"`
}

// AdminConfig is the fixed administrator credential pair. Matching this pair
// at login grants an admin session without any stored-hash comparison.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"qna.events"`
}

type Config struct {
	Port        string `env:"PORT" envDefault:"5000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SessionSecret  string   `env:"SESSION_SECRET" envDefault:"qna_secret"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	Admin   AdminConfig
	Storage StorageConfig
	Kafka   KafkaConfig

	LogLevel slog.Level `env:"-"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; environment variables take over.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	return cfg, nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
