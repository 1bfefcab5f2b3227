// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// MinKDFIterations is the lowest accepted PBKDF2 iteration count
	MinKDFIterations = 1000
	// MinSaltBytes is the lowest accepted salt length in bytes
	MinSaltBytes = 16
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// PasswordConfig holds credential derivation settings
type PasswordConfig struct {
	Iterations int
	SaltBytes  int
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	LoginPerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env file is optional, real environment wins
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPort, err := intOrDefault("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	cfg.Logging.Level = logLevel

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	expiresInStr := os.Getenv("JWT_EXPIRES_IN")
	if expiresInStr == "" {
		expiresInStr = "1h"
	}
	expiresIn, err := time.ParseDuration(expiresInStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	cfg.JWT.ExpiresIn = expiresIn

	// Password derivation configuration
	iterations, err := intOrDefault("KDF_ITERATIONS", MinKDFIterations)
	if err != nil {
		return nil, err
	}
	cfg.Password.Iterations = iterations

	saltBytes, err := intOrDefault("SALT_BYTES", MinSaltBytes)
	if err != nil {
		return nil, err
	}
	cfg.Password.SaltBytes = saltBytes

	loginLimit, err := intOrDefault("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.LoginPerMinute = loginLimit

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges that cannot be expressed as "required"
func (c *Config) Validate() error {
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	if c.Password.Iterations < MinKDFIterations {
		return fmt.Errorf("KDF_ITERATIONS must be at least %d", MinKDFIterations)
	}
	if c.Password.SaltBytes < MinSaltBytes {
		return fmt.Errorf("SALT_BYTES must be at least %d", MinSaltBytes)
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	return nil
}

// DSN returns the database connection string.
// clientFoundRows makes UPDATE report matched rows, so an edit that changes nothing is not mistaken for a missing row.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// intOrDefault reads an integer variable, falling back to def when unset
func intOrDefault(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// parseOrigins splits a comma-separated origin list.
// An empty list means every origin is allowed (development setup).
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}

	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
