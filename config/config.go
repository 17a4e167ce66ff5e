package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type Config struct {
	Port              string
	GinMode           string
	LogLevel          string
	Database          DatabaseConfig
	JWTSecret         string
	RabbitURL         string
	CORSOrigin        string
	ReconcileInterval time.Duration
	StrictTableCheck  bool
	SeedTables        bool
	ReserveRate       int
	ReserveBurst      int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RabbitURL:  os.Getenv("RABBITMQ_URL"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:      os.Getenv("DB_DSN"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "restaurant"),
		},
	}

	var err error
	if cfg.Database.Port, err = getInt("DB_PORT", 0); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StrictTableCheck, err = getBool("STRICT_TABLE_CHECK", true); err != nil {
		return nil, err
	}
	if cfg.SeedTables, err = getBool("SEED_TABLES", true); err != nil {
		return nil, err
	}
	if cfg.ReserveRate, err = getInt("RESERVE_RATE_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.ReserveBurst, err = getInt("RESERVE_RATE_BURST", 5); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
