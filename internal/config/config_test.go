package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstinvoice/internal/storage"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"STORE_DRIVER", "STORE_PATH", "REDIS_ADDR", "REDIS_PREFIX",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, storage.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "./gstinvoice.db", cfg.StorePath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "stderr", cfg.LogOutput)

	store := cfg.GetStoreConfig()
	assert.Equal(t, storage.Config{Driver: "sqlite", Path: "./gstinvoice.db"}, store)

	log := cfg.GetLoggerConfig()
	assert.Equal(t, "console", log.Format)
	assert.Equal(t, "warn", log.Level)
}

func TestLoadRedis(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PREFIX", "shop1:")

	cfg, err := Load()
	require.NoError(t, err)

	store := cfg.GetStoreConfig()
	assert.Equal(t, storage.DriverRedis, store.Driver)
	assert.Equal(t, "localhost:6379", store.RedisAddr)
	assert.Equal(t, "shop1:", store.RedisPrefix)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
		{"redis without address", map[string]string{"STORE_DRIVER": "redis"}, "REDIS_ADDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMemory(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, storage.DriverMemory, cfg.GetStoreConfig().Driver)
}
