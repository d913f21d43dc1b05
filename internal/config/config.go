package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Uploads  UploadConfig
	Ops      OpsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port      string
	GinMode   string
	StaticDir string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AIConfig holds the hosted model settings
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// MaxConcurrent bounds in-flight upstream calls across all users
	MaxConcurrent int
}

// AuthConfig holds token issuing settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// CacheConfig holds in-memory dataset cache settings
type CacheConfig struct {
	DatasetTTL time.Duration
}

// UploadConfig holds dataset upload limits
type UploadConfig struct {
	MaxBytes int64
}

// OpsConfig holds the operational endpoint settings
type OpsConfig struct {
	Enabled      bool
	Port         string
	PprofEnabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		AI:       loadAIConfig(),
		Auth:     loadAuthConfig(),
		Cache:    loadCacheConfig(),
		Uploads:  loadUploadConfig(),
		Ops:      loadOpsConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:      getEnvOrDefault("PORT", "8080"),
		GinMode:   getEnvOrDefault("GIN_MODE", "debug"),
		StaticDir: getEnvOrDefault("STATIC_DIR", "./ui/static"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL: os.Getenv("DATABASE_URL"),
	}
}

func loadAIConfig() AIConfig {
	return AIConfig{
		APIKey:        os.Getenv("OPENAI_API_KEY"),
		Model:         getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		BaseURL:       getEnvOrDefault("LLM_BASE_URL", ""),
		MaxTokens:     getEnvIntOrDefault("LLM_MAX_TOKENS", 4096),
		Temperature:   getEnvFloatOrDefault("LLM_TEMPERATURE", 0.2),
		Timeout:       getEnvDurationOrDefault("LLM_TIMEOUT", 120*time.Second),
		MaxConcurrent: getEnvIntOrDefault("LLM_MAX_CONCURRENT", 4),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDurationOrDefault("TOKEN_TTL", 30*24*time.Hour),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		DatasetTTL: getEnvDurationOrDefault("DATASET_TTL", 2*time.Hour),
	}
}

func loadUploadConfig() UploadConfig {
	return UploadConfig{
		MaxBytes: getEnvInt64OrDefault("UPLOAD_MAX_BYTES", 20<<20),
	}
}

func loadOpsConfig() OpsConfig {
	return OpsConfig{
		Enabled:      getEnvBoolOrDefault("OPS_ENABLED", true),
		Port:         getEnvOrDefault("OPS_PORT", "6060"),
		PprofEnabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if config.AI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
