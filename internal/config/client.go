package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
)

// ClientConfig configures the trainer-side sync runtime (shiftctl)
type ClientConfig struct {
	APIURL          string
	APIToken        string
	QueuePath       string
	SyncInterval    time.Duration
	RetryDelay      time.Duration
	RequestTimeout  time.Duration
	FreshnessWindow time.Duration
	Timezone        string
	JWTSecret       string // only for minting development tokens
}

func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		APIURL:    getEnv("SHIFT_API_URL", "http://localhost:8080"),
		APIToken:  getEnv("SHIFT_API_TOKEN", ""),
		QueuePath: getEnv("SHIFT_QUEUE_PATH", defaultQueuePath()),
		Timezone:  getEnv("SHIFT_TIMEZONE", shift.DefaultTimezone),
		JWTSecret: getEnv("JWT_SECRET_KEY", ""),
	}

	var err error
	if cfg.SyncInterval, err = getEnvDuration("SHIFT_SYNC_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getEnvDuration("SHIFT_SYNC_RETRY_DELAY", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("SHIFT_REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.FreshnessWindow, err = getEnvDuration("SHIFT_FRESHNESS_WINDOW", shift.DefaultFreshnessWindow); err != nil {
		return nil, err
	}

	if cfg.SyncInterval <= 0 {
		return nil, fmt.Errorf("SHIFT_SYNC_INTERVAL must be positive")
	}

	return cfg, nil
}

// Location resolves the academy timezone used to read offset-less timestamps
func (c *ClientConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SHIFT_TIMEZONE: %w", err)
	}
	return loc, nil
}

func defaultQueuePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shift-queue.db"
	}
	return filepath.Join(dir, "academy-shift", "queue.db")
}
