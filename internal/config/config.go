package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BlobBackend        string
	UploadDir          string
	PublicBaseURL      string
	AWSRegion          string
	S3Bucket           string
	S3Endpoint         string
	S3ForcePathStyle   bool
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DownloadURLTTL     time.Duration
	MaxUploadBytes     int64

	CORSAllowedOrigins []string
}

// Load reads configuration from the environment, loading a .env file first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded .env file")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "renovation"),
		DBPassword: getEnv("DB_PASSWORD", "renovation"),
		DBName:     getEnv("DB_NAME", "renovation_tracker"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "renovation.db"),

		DBMaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", constants.DefaultDBMaxOpenConns),
		DBMaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", constants.DefaultDBMaxIdleConns),
		DBConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", constants.DefaultDBConnMaxLifetime),

		JWTSecret:  getEnv("JWT_SECRET", "default-secret-key-change-me"),
		TokenTTL:   getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		BcryptCost: getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		BlobBackend:        getEnv("BLOB_BACKEND", "local"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3ForcePathStyle:   getBoolEnv("S3_FORCE_PATH_STYLE", false),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DownloadURLTTL:     getDurationEnv("DOWNLOAD_URL_TTL", constants.DefaultDownloadURLTTL),
		MaxUploadBytes:     int64(getIntEnv("MAX_UPLOAD_BYTES", int(constants.MaxUploadBytes))),

		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.Warnf("Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.Warnf("Invalid boolean value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.Warnf("Invalid duration value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
