package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port               string
	Environment        string
	LogLevel           string
	Storage            string // STORAGE: postgres (default) or memory for local demos
	Database           DatabaseConfig
	Redis              RedisConfig
	ShopTimezone       string
	Location           *time.Location
	UpcomingWindowDays int
	SweepInterval      time.Duration // background lateness sweep; 0 disables
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrateOnStart bool
}

// URL returns the connection string in URL form (golang-migrate wants this one)
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig is used by the phase lookup cache; empty Addr disables it
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PhaseTTL time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Storage:     strings.ToLower(strings.TrimSpace(getEnvOrViper("STORAGE", StoragePostgres))),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "roupadegala"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
		},
		ShopTimezone: getEnvOrViper("SHOP_TIMEZONE", "America/Sao_Paulo"),
	}

	var err error
	if cfg.Database.MigrateOnStart, err = strconv.ParseBool(getEnvOrViper("DB_MIGRATE_ON_START", "true")); err != nil {
		return nil, fmt.Errorf("DB_MIGRATE_ON_START: %w", err)
	}
	if cfg.Redis.DB, err = strconv.Atoi(getEnvOrViper("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.Redis.PhaseTTL, err = time.ParseDuration(getEnvOrViper("PHASE_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("PHASE_CACHE_TTL: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(getEnvOrViper("SWEEP_INTERVAL", "10m")); err != nil {
		return nil, fmt.Errorf("SWEEP_INTERVAL: %w", err)
	}
	if cfg.UpcomingWindowDays, err = strconv.Atoi(getEnvOrViper("UPCOMING_WINDOW_DAYS", "10")); err != nil {
		return nil, fmt.Errorf("UPCOMING_WINDOW_DAYS: %w", err)
	}

	// Validate
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}
	if cfg.UpcomingWindowDays < 1 {
		return nil, fmt.Errorf("UPCOMING_WINDOW_DAYS must be positive")
	}
	if cfg.Location, err = time.LoadLocation(cfg.ShopTimezone); err != nil {
		return nil, fmt.Errorf("SHOP_TIMEZONE: %w", err)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
