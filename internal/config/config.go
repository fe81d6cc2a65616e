// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds everything cmd/server needs to wire the application.
type Config struct {
	Port         string
	CORSOrigin   string
	LogLevel     string
	LogFormat    string
	Store        string
	CookieSecure bool

	ShutdownTimeout time.Duration

	Mongo      MongoConfig
	Cloudinary CloudinaryConfig

	JWTSecret string
}

type MongoConfig struct {
	URL      string
	Database string
	Timeout  time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
	ErrMissingMongoURL  = errors.New("MONGO_URL is required when STORE=mongo")
	ErrUnknownStore     = errors.New("STORE must be mongo or memory")
)

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "4000"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		Store:        strings.ToLower(getEnv("STORE", StoreMongo)),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,

		Mongo: MongoConfig{
			URL:      os.Getenv("MONGO_URL"),
			Database: getEnv("MONGO_DB", "eventoems"),
			Timeout:  time.Duration(getEnvInt("MONGO_TIMEOUT_SEC", 10)) * time.Second,
		},

		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getEnv("CLOUDINARY_FOLDER", "events"),
		},

		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}

// Validate fails fast on settings the server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Store {
	case StoreMongo:
		if c.Mongo.URL == "" {
			return ErrMissingMongoURL
		}
	case StoreMemory:
	default:
		return ErrUnknownStore
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
