package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	XEAPI  XEAPIConfig
	Cache  CacheConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type XEAPIConfig struct {
	BaseURL   string
	AccountID string
	APIKey    string
	Timeout   time.Duration
}

type CacheConfig struct {
	// TTL is nil when rates never expire.
	TTL            *time.Duration
	ExpireInterval time.Duration
}

type LogConfig struct {
	Level string
}

var ErrMissingCredentials = errors.New("XE_ACCOUNT_ID and XE_API_KEY must be set")

// LoadConfig reads the environment, after loading a .env file if one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		XEAPI: XEAPIConfig{
			BaseURL:   getEnvString("XE_API_BASE_URL", "https://xecdapi.xe.com/v1/convert_from.json"),
			AccountID: getEnvString("XE_ACCOUNT_ID", ""),
			APIKey:    getEnvString("XE_API_KEY", ""),
			Timeout:   getEnvDuration("XE_API_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL:            getEnvOptionalDuration("CACHE_TTL"),
			ExpireInterval: getEnvDuration("CACHE_EXPIRE_INTERVAL", time.Minute),
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.XEAPI.AccountID == "" || c.XEAPI.APIKey == "" {
		return ErrMissingCredentials
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvOptionalDuration returns nil for an unset, zero, negative or
// unparsable value.
func getEnvOptionalDuration(key string) *time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, leaving it unset\n", key)
		return nil
	}
	if value <= 0 {
		return nil
	}

	return &value
}
