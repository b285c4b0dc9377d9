package config

import (
	"os"
	"strings"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// TokenEnvVar is the environment variable holding the default GitHub token
const TokenEnvVar = "GITHUB_PERSONAL_ACCESS_TOKEN"

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken  string
	GitHubAPIURL string // empty means api.github.com
	PerPage      int
	MaxPages     int
	HTTPTimeout  time.Duration

	// Web server
	APIPort            string
	APIHost            string
	GinMode            string
	SessionIdleTimeout time.Duration

	// CLI
	APIEndpoint string

	LogLevel string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:  getEnv(TokenEnvVar, ""),
		GitHubAPIURL: getEnv("GITHUB_API_URL", ""),
		PerPage:      getEnvAsInt("GITHUB_PER_PAGE", 100),
		MaxPages:     getEnvAsInt("GITHUB_MAX_PAGES", 1),
		HTTPTimeout:  time.Duration(getEnvAsInt("GITHUB_HTTP_TIMEOUT", 30)) * time.Second,
		APIPort:      getEnv("API_PORT", "8501"),
		APIHost:      getEnv("API_HOST", "localhost"),
		GinMode:      strings.TrimSpace(getEnv("GIN_MODE", "")),
		APIEndpoint:  getEnv("API_ENDPOINT", "http://localhost:8501"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		SessionIdleTimeout: time.Duration(getEnvAsInt("SESSION_IDLE_TIMEOUT", 60)) * time.Minute,
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns an integer environment variable or a default value.
// Unparseable values fall back to the default.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PerPage < 1 || c.PerPage > 100 {
		return &ConfigError{Field: "GITHUB_PER_PAGE", Message: "must be between 1 and 100"}
	}
	if c.MaxPages < 1 {
		return &ConfigError{Field: "GITHUB_MAX_PAGES", Message: "must be at least 1"}
	}
	if c.HTTPTimeout <= 0 {
		return &ConfigError{Field: "GITHUB_HTTP_TIMEOUT", Message: "must be a positive number of seconds"}
	}
	if c.APIPort == "" {
		return &ConfigError{Field: "API_PORT", Message: "port is required"}
	}
	switch c.GinMode {
	case "", "debug", "release", "test":
	default:
		return &ConfigError{Field: "GIN_MODE", Message: "must be one of debug, release, test"}
	}
	if c.SessionIdleTimeout <= 0 {
		return &ConfigError{Field: "SESSION_IDLE_TIMEOUT", Message: "must be a positive number of minutes"}
	}
	return nil
}

// Addr returns the listen address of the web server
func (c *Config) Addr() string {
	return c.APIHost + ":" + c.APIPort
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
