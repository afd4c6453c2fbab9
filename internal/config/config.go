package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	StorageDisk = "disk"
	StorageS3   = "s3"
)

type Config struct {
	AppPort       string `mapstructure:"APP_PORT"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	MaxUploadMB   int64  `mapstructure:"MAX_UPLOAD_MB"`

	// --- Database ---
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	MongoURI   string `mapstructure:"MONGO_URI"`
	MongoDB    string `mapstructure:"MONGO_DB"`

	// --- Image storage ---
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	ImagesDir     string `mapstructure:"IMAGES_DIR"`
	S3Endpoint    string `mapstructure:"S3_ENDPOINT"`
	S3Region      string `mapstructure:"S3_REGION"`
	S3Bucket      string `mapstructure:"S3_BUCKET"`
	S3AccessKey   string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey   string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL      bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle   bool   `mapstructure:"S3_PATH_STYLE"`

	// --- Redis ---
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	// --- Auth ---
	AuthJWTSecret  string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer     string        `mapstructure:"AUTH_ISSUER"`
	AuthTokenTTL   time.Duration `mapstructure:"AUTH_TOKEN_TTL"`
	PasswordHasher string        `mapstructure:"PASSWORD_HASHER"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST"`
}

func mask(s string) string {
	if s != "" {
		return "********"
	}
	return "(empty)"
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  PublicBaseURL: %s\n", c.PublicBaseURL))
	sb.WriteString(fmt.Sprintf("  MaxUploadMB: %d\n", c.MaxUploadMB))

	sb.WriteString(fmt.Sprintf("  DBDriver: %s\n", c.DBDriver))
	switch c.DBDriver {
	case DriverPostgres:
		sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
		sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
		sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
		sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
		// пароль маскируем
		sb.WriteString(fmt.Sprintf("  DBPassword: %s\n", mask(c.DBPassword)))
	case DriverMongo:
		// в URI может быть пароль
		sb.WriteString(fmt.Sprintf("  MongoURI: %s\n", mask(c.MongoURI)))
		sb.WriteString(fmt.Sprintf("  MongoDB: %s\n", c.MongoDB))
	}

	sb.WriteString(fmt.Sprintf("  StorageDriver: %s\n", c.StorageDriver))
	switch c.StorageDriver {
	case StorageDisk:
		sb.WriteString(fmt.Sprintf("  ImagesDir: %s\n", c.ImagesDir))
	case StorageS3:
		sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
		sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
		sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
		sb.WriteString(fmt.Sprintf("  S3AccessKey: %s\n", mask(c.S3AccessKey)))
		sb.WriteString(fmt.Sprintf("  S3SecretKey: %s\n", mask(c.S3SecretKey)))
		sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
		sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))
	}

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(fmt.Sprintf("  RedisPassword: %s\n", mask(c.RedisPassword)))
	sb.WriteString(fmt.Sprintf("  CacheTTL: %s\n", c.CacheTTL))

	sb.WriteString(fmt.Sprintf("  AuthJWTSecret: %s\n", mask(c.AuthJWTSecret)))
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  AuthTokenTTL: %s\n", c.AuthTokenTTL))
	sb.WriteString(fmt.Sprintf("  PasswordHasher: %s\n", c.PasswordHasher))
	sb.WriteString(fmt.Sprintf("  BcryptCost: %d\n", c.BcryptCost))

	return sb.String()
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "4000")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("MONGO_DB", "books")
	v.SetDefault("STORAGE_DRIVER", StorageDisk)
	v.SetDefault("IMAGES_DIR", "images")
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("AUTH_ISSUER", "my-books")
	v.SetDefault("AUTH_TOKEN_TTL", "24h")
	v.SetDefault("PASSWORD_HASHER", "bcrypt")
	v.SetDefault("BCRYPT_COST", 10)

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT", "PUBLIC_BASE_URL", "MAX_UPLOAD_MB",
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"MONGO_URI", "MONGO_DB",
		"STORAGE_DRIVER", "IMAGES_DIR",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD", "CACHE_TTL",
		"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_TOKEN_TTL",
		"PASSWORD_HASHER", "BCRYPT_COST",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры выбранных драйверов.
func (c *Config) Validate() error {
	if c.AuthJWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBName == "" || c.DBUser == "" {
			return errors.New("DB_NAME and DB_USER are required for postgres")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for mongo")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case StorageDisk:
		if c.ImagesDir == "" {
			return errors.New("IMAGES_DIR is required for disk storage")
		}
	case StorageS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return errors.New("S3_ENDPOINT and S3_BUCKET are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// CacheTTLSeconds — TTL кеша в секундах для domain.Cache.Set
func (c *Config) CacheTTLSeconds() int {
	return int(c.CacheTTL / time.Second)
}
