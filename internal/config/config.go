package config

import (
	"fmt"
	"os"
	"strings"

	"gstinvoice/internal/logger"
	"gstinvoice/internal/storage"
)

type Config struct {
	// Storage Configuration
	StoreDriver string
	StorePath   string
	RedisAddr   string
	RedisPrefix string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", storage.DriverSQLite)),
		StorePath:     getEnv("STORE_PATH", "./gstinvoice.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPrefix:   getEnv("REDIS_PREFIX", ""),
		LogLevel:      getEnv("LOG_LEVEL", "warn"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case storage.DriverSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the sqlite driver")
		}
	case storage.DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis driver")
		}
	case storage.DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of sqlite, redis, memory", c.StoreDriver)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetStoreConfig returns the storage driver settings
func (c *Config) GetStoreConfig() storage.Config {
	return storage.Config{
		Driver:      c.StoreDriver,
		Path:        c.StorePath,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
