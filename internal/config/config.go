package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

var (
	ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")
	ErrMissingAPIKey    = errors.New("GOOGLE_API_KEY must be set outside development")
	ErrUnknownDriver    = errors.New("STORE_DRIVER must be one of mysql, sqlite, mongodb")
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMySQL   = "mysql"
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreDriver   string
	DatabaseDSN   string
	MongoURL      string
	MongoDatabase string

	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OracleTimeout time.Duration

	JWTSecret string
	JWTExpiry time.Duration

	ChatContextTurns int
	KnowledgeDir     string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8001"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverMySQL),
		MongoURL:      getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "taekwondo_chatbot"),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", devJWTSecret),
		KnowledgeDir:  os.Getenv("KNOWLEDGE_DIR"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DatabaseDSN = getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/hawy?parseTime=true")
	case DriverSQLite:
		cfg.DatabaseDSN = getEnv("DATABASE_DSN", "file:hawy.db")
	case DriverMongoDB:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OracleTimeout, err = getDuration("ORACLE_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.ChatContextTurns, err = getInt("CHAT_CONTEXT_TURNS", 25); err != nil {
		return Config{}, err
	}

	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrProductionSecret
	}
	if !cfg.IsDevelopment() && cfg.GoogleAPIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
