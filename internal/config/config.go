package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Kafka   KafkaConfig
	Auth    AuthConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig holds record store specific configuration
type StorageConfig struct {
	BasePath    string
	ArchiveDir  string
	Permissions string
}

// KafkaConfig holds change-event publishing configuration. Publishing is
// disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// AuthConfig holds bearer-token authentication configuration
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret is required when auth is enabled")
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Storage defaults
	v.SetDefault("storage.basePath", "lists")
	v.SetDefault("storage.archiveDir", "archive")
	v.SetDefault("storage.permissions", "0644")

	// Kafka defaults
	v.SetDefault("kafka.topic", "watchlist-events")
	v.SetDefault("kafka.clientId", "watchlist-service")

	// Auth defaults
	v.SetDefault("auth.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
