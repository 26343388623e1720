package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	S3        S3Config
	Upload    UploadConfig
	Reconcile ReconcileConfig
	Redis     RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings. Pool sizing is
// deliberately small: each request holds a connection only for the metadata
// insert or a read, never across the blob upload.
type DatabaseConfig struct {
	URL               string // if set, used as-is (e.g. postgres://localhost:5432/voicebank?sslmode=disable)
	Host              string
	Port              string
	User              string
	Password          string
	DBName            string
	SSLMode           string
	MaxConns          int
	ConnectTimeoutSec int
}

// S3Config holds object storage settings. EndpointURL may point at any
// S3-compatible store; empty means AWS proper.
type S3Config struct {
	EndpointURL     string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CacheControl    string // Cache-Control header set on every uploaded object
}

// UploadConfig bounds user-submitted content.
type UploadConfig struct {
	MaxContentLength int64 // request body cap in bytes
	MaxStringLength  int   // cap for metadata string fields
}

// ReconcileConfig controls the orphaned-upload sweep.
type ReconcileConfig struct {
	IntervalSec int
	GraceSec    int // pending rows older than this are reaped
}

// RedisConfig holds optional Redis cache settings. Empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 60),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:               getEnv("DATABASE_URL", ""),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnv("DB_PORT", "5432"),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "voicebank"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          getEnvInt("DB_MAX_CONNS", 10),
			ConnectTimeoutSec: getEnvInt("DB_CONNECT_TIMEOUT_SEC", 5),
		},
		S3: S3Config{
			EndpointURL:     getEnv("S3_ENDPOINT_URL", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("S3_BUCKET_NAME", "voicebank-recordings"),
			CacheControl:    getEnv("UPLOAD_CACHE_CONTROL", "public, max-age=604800"),
		},
		Upload: UploadConfig{
			MaxContentLength: getEnvInt64("MAX_CONTENT_LENGTH", 8*1024*1024),
			MaxStringLength:  getEnvInt("MAX_STRING_LENGTH", 100),
		},
		Reconcile: ReconcileConfig{
			IntervalSec: getEnvInt("RECONCILE_INTERVAL_SEC", 300),
			GraceSec:    getEnvInt("RECONCILE_GRACE_SEC", 900),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if cfg.Upload.MaxContentLength <= 0 {
		return nil, fmt.Errorf("MAX_CONTENT_LENGTH must be positive")
	}
	if cfg.Upload.MaxStringLength <= 0 {
		return nil, fmt.Errorf("MAX_STRING_LENGTH must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
