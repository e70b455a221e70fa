package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Shift    ShiftConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	Version        string
	LogLevel       string
	AllowedOrigins []string
}

// ShiftConfig holds the attendance policy and the sweep trigger settings
type ShiftConfig struct {
	Timezone           string
	FreshnessWindow    time.Duration
	FutureTolerance    time.Duration
	ReviewThreshold    time.Duration
	MaxBatchSize       int
	ExcludedTrainerIDs []string
	CronSecret         string
	SweepInterval      time.Duration // 0 disables the in-process sweep
}

// loadDotEnv reads .env when present. A missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "academy"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Shift policy
	shiftConfig, err := loadShiftConfig()
	if err != nil {
		return nil, err
	}
	config.Shift = shiftConfig

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadShiftConfig() (ShiftConfig, error) {
	var (
		cfg ShiftConfig
		err error
	)

	cfg.Timezone = getEnv("SHIFT_TIMEZONE", shift.DefaultTimezone)
	cfg.CronSecret = getEnv("CRON_SECRET", "")
	cfg.ExcludedTrainerIDs = getEnvSlice("SHIFT_EXCLUDED_TRAINER_IDS", "")

	if cfg.FreshnessWindow, err = getEnvDuration("SHIFT_FRESHNESS_WINDOW", shift.DefaultFreshnessWindow); err != nil {
		return cfg, err
	}
	if cfg.FutureTolerance, err = getEnvDuration("SHIFT_FUTURE_TOLERANCE", shift.DefaultFutureTolerance); err != nil {
		return cfg, err
	}
	if cfg.ReviewThreshold, err = getEnvDuration("SHIFT_REVIEW_THRESHOLD", shift.DefaultReviewThreshold); err != nil {
		return cfg, err
	}
	if cfg.SweepInterval, err = getEnvDuration("SHIFT_SWEEP_INTERVAL", 10*time.Minute); err != nil {
		return cfg, err
	}

	cfg.MaxBatchSize, err = strconv.Atoi(getEnv("SHIFT_MAX_BATCH", strconv.Itoa(shift.DefaultMaxBatchSize)))
	if err != nil {
		return cfg, fmt.Errorf("invalid SHIFT_MAX_BATCH: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Shift.CronSecret == "" {
		return fmt.Errorf("CRON_SECRET is required")
	}
	if c.Shift.MaxBatchSize <= 0 {
		return fmt.Errorf("SHIFT_MAX_BATCH must be positive")
	}
	if c.Shift.FreshnessWindow <= 0 {
		return fmt.Errorf("SHIFT_FRESHNESS_WINDOW must be positive")
	}
	if _, err := time.LoadLocation(c.Shift.Timezone); err != nil {
		return fmt.Errorf("invalid SHIFT_TIMEZONE: %w", err)
	}
	return nil
}

// Policy builds the attendance policy from the shift configuration
func (c ShiftConfig) Policy() (shift.Policy, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return shift.Policy{}, fmt.Errorf("invalid SHIFT_TIMEZONE: %w", err)
	}

	policy := shift.DefaultPolicy(loc)
	policy.FreshnessWindow = c.FreshnessWindow
	policy.FutureTolerance = c.FutureTolerance
	policy.ReviewThreshold = c.ReviewThreshold
	policy.MaxBatchSize = c.MaxBatchSize
	policy.ExcludedTrainerIDs = shift.NewTrainerSet(c.ExcludedTrainerIDs...)
	return policy, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func SlogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
