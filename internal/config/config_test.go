package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "top-secret")
	t.Setenv("DB_DRIVER", DriverMemory)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.AppPort)
	assert.Equal(t, StorageDisk, cfg.StorageDriver)
	assert.Equal(t, "images", cfg.ImagesDir)
	assert.Equal(t, 24*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 60, cfg.CacheTTLSeconds())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "bcrypt", cfg.PasswordHasher)
	assert.EqualValues(t, 10, cfg.MaxUploadMB)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "top-secret")
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DB_USER", "books")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "books")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("CACHE_TTL", "5s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, 2*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, 5, cfg.CacheTTLSeconds())
	assert.Equal(t, "postgres://books:pw@localhost:6543/books?sslmode=disable", cfg.GetDSN())
}

func TestLoadFromEnv_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("DB_DRIVER", DriverMemory)

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		AuthJWTSecret: "s", DBDriver: DriverMemory,
		StorageDriver: StorageDisk, ImagesDir: "images", MaxUploadMB: 1,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "sqlite"
	assert.Error(t, bad.Validate())

	bad = base
	bad.DBDriver = DriverMongo
	assert.Error(t, bad.Validate())

	bad = base
	bad.StorageDriver = StorageS3
	assert.Error(t, bad.Validate())

	bad = base
	bad.MaxUploadMB = 0
	assert.Error(t, bad.Validate())
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := Config{
		DBDriver: DriverPostgres, DBPassword: "pg-pass",
		StorageDriver: StorageS3, S3SecretKey: "s3-secret",
		AuthJWTSecret: "jwt-secret", RedisPassword: "redis-pass",
	}
	s := cfg.String()
	for _, secret := range []string{"pg-pass", "s3-secret", "jwt-secret", "redis-pass"} {
		assert.False(t, strings.Contains(s, secret), secret)
	}
	assert.Contains(t, s, "********")
}
