// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for databases
	DatabasePath     string // Main portfolio database
	HistoryDir       string // Per-symbol price history databases
	BenchmarkTicker  string // Benchmark index symbol used for beta
	LogLevel         string
	Port             int
	DevMode          bool
	SnapshotSchedule string // Cron expression for the daily snapshot job

	// Backup settings (optional - backups disabled when bucket is empty)
	BackupBucket   string
	BackupPrefix   string
	BackupSchedule string
	AWSRegion      string
	AWSAccessKey   string // empty means the default credential chain
	AWSSecretKey   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8090),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DataDir:          getEnv("DATA_DIR", "./data"),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/portfolio.db"),
		HistoryDir:       getEnv("HISTORY_DIR", "./data/history"),
		BenchmarkTicker:  getEnv("BENCHMARK_TICKER", "SPY"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "0 5 18 * * MON-FRI"),
		BackupBucket:     getEnv("BACKUP_BUCKET", ""),
		BackupPrefix:     getEnv("BACKUP_PREFIX", "backups"),
		BackupSchedule:   getEnv("BACKUP_SCHEDULE", "0 0 2 * * *"),
		AWSRegion:        getEnv("AWS_REGION", "eu-central-1"),
		AWSAccessKey:     getEnv("AWS_ACCESS_KEY", ""),
		AWSSecretKey:     getEnv("AWS_SECRET_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.BenchmarkTicker == "" {
		return fmt.Errorf("BENCHMARK_TICKER is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
