package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		expectError string
		validate    func(*testing.T, Config)
	}{
		{
			name: "mysql defaults",
			env:  map[string]string{"DB_USER": "app", "DB_NAME": "adopt"},
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, StoreMySQL, cfg.StoreDriver)
				assert.Equal(t, "3001", cfg.Port)
				assert.Equal(t, ":3001", cfg.Addr())
				assert.Equal(t, "127.0.0.1", cfg.DBHost)
				assert.Equal(t, "3306", cfg.DBPort)
				assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
				assert.Equal(t, "uploads", cfg.UploadDir)
				assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
				assert.False(t, cfg.AdminAuthEnabled)
				assert.False(t, cfg.EventsEnabled)
			},
		},
		{
			name:        "mysql requires credentials",
			env:         map[string]string{},
			expectError: "missing required env vars: DB_NAME, DB_USER",
		},
		{
			name: "memory store needs no database",
			env:  map[string]string{"STORE_DRIVER": "MEMORY", "UPLOAD_MAX_BYTES": "1024"},
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, StoreMemory, cfg.StoreDriver)
				assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
			},
		},
		{
			name:        "unknown driver",
			env:         map[string]string{"STORE_DRIVER": "sqlite"},
			expectError: `invalid STORE_DRIVER "sqlite"`,
		},
		{
			name:        "admin auth requires secret and hash",
			env:         map[string]string{"STORE_DRIVER": "memory", "ADMIN_AUTH_ENABLED": "true"},
			expectError: "missing required env vars: ADMIN_PASSWORD_HASH, JWT_SECRET",
		},
		{
			name:        "invalid port",
			env:         map[string]string{"STORE_DRIVER": "memory", "APP_PORT": "http"},
			expectError: `invalid APP_PORT "http"`,
		},
		{
			name: "broker url fallback",
			env:  map[string]string{"STORE_DRIVER": "memory", "AMQP_URL": "amqp://broker:5672/"},
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, "amqp://broker:5672/", cfg.RabbitMQURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{
				"APP_ENV", "APP_PORT", "STORE_DRIVER", "DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME",
				"UPLOAD_MAX_BYTES", "UPLOAD_DIR", "REQUEST_TIMEOUT", "ADMIN_AUTH_ENABLED", "JWT_SECRET",
				"ADMIN_PASSWORD_HASH", "EVENTS_ENABLED", "RABBITMQ_URL", "AMQP_URL",
			} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectError, err.Error())
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, time.Minute, cfg.RefillInterval)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, "adopt:cache", cfg.Prefix)
}

func TestLoadRedisConfigAddress(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "on")
	rc := LoadRedisConfig()
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.Equal(t, 2, rc.DB)
	assert.True(t, rc.TLS)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

func TestNewRedisClientDisabled(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{Disabled: true})
	assert.ErrorIs(t, err, ErrRedisDisabled)
}
