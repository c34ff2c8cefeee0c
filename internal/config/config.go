package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
// It follows the 12-factor app methodology by prioritizing environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	MinIO    MinIOConfig
	Upload   UploadConfig
	Relay    RelayConfig
	Auth     AuthConfig
	Store    StoreConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type UploadConfig struct {
	// StagingDir is where admitted files wait for the relay worker.
	StagingDir  string
	MaxFileSize int64
	TokenSecret string
}

type RelayConfig struct {
	Interval       time.Duration
	PerFileTimeout time.Duration
	// Backend selects the durable store: "s3" or "minio".
	Backend string
	// Container is the destination bucket/folder for relayed photos.
	Container string
}

type AuthConfig struct {
	JWTSecret       string
	AccessTTL       time.Duration
	SessionCacheTTL time.Duration
}

type StoreConfig struct {
	// Backend selects the metadata store: "postgres" or "redis".
	Backend string
}

// LoadConfig loads configuration from environment variables.
// Defaults can be set here if needed.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "lumo"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		S3: S3Config{
			Region:    getEnv("S3_REGION", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "lumo-photos"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			StagingDir:  getEnv("UPLOAD_STAGING_DIR", "./uploads"),
			MaxFileSize: getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 10<<20),
			TokenSecret: getEnv("UPLOAD_TOKEN_SECRET", "dev-token-secret"),
		},
		Relay: RelayConfig{
			Interval:       getEnvAsDuration("RELAY_INTERVAL", 5*time.Minute),
			PerFileTimeout: getEnvAsDuration("RELAY_PER_FILE_TIMEOUT", 2*time.Minute),
			Backend:        getEnv("RELAY_BACKEND", "s3"),
			Container:      getEnv("RELAY_CONTAINER", "lumo-photos"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "dev-jwt-secret"),
			AccessTTL:       getEnvAsDuration("JWT_ACCESS_TTL", 24*time.Hour),
			SessionCacheTTL: getEnvAsDuration("SESSION_CACHE_TTL", 5*time.Minute),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "postgres"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
