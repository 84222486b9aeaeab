// Package config loads server configuration from trackrest.yml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the trackrest configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig represents HTTP listener configuration
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	Host    string `mapstructure:"host"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig represents token validation configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// APIConfig represents resource pipeline configuration
type APIConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from trackrest.yml or trackrest.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("api.default_limit", 100)
	v.SetDefault("api.max_limit", 200)
	v.SetDefault("log.level", "info")

	v.SetConfigName("trackrest")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	cfg, err := Load()
	if err != nil {
		return ""
	}

	return cfg.Database.URL
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.API.DefaultLimit < 0 {
		return fmt.Errorf("api.default_limit must not be negative, got: %d", cfg.API.DefaultLimit)
	}
	if cfg.API.MaxLimit > 0 && cfg.API.DefaultLimit > cfg.API.MaxLimit {
		return fmt.Errorf("api.default_limit %d exceeds api.max_limit %d", cfg.API.DefaultLimit, cfg.API.MaxLimit)
	}
	if cfg.Server.BaseURL != "" && strings.HasSuffix(cfg.Server.BaseURL, "/") {
		return fmt.Errorf("server.base_url must not end with '/', got: %s", cfg.Server.BaseURL)
	}
	return nil
}
