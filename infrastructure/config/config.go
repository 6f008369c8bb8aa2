// Package config loads application configuration from an optional config.yaml
// and environment variables, environment taking precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Neo4j configuration
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Token store configuration
	SQLitePath string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Embed configuration
	EmbedBaseURL      string
	DefaultExpiryDays int
	MaxExpiryDays     int
	SweepInterval     time.Duration

	// HTTP
	AllowedOrigins []string
	ProxyRateLimit int // requests per minute per IP on the public proxy path

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from config.yaml (if present in the working
// directory) and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "neo4j")
	v.SetDefault("sqlite.path", "data/embed.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "embedgraph-backend")
	v.SetDefault("embed.base_url", "")
	v.SetDefault("embed.default_expiry_days", 1)
	v.SetDefault("embed.max_expiry_days", 90)
	v.SetDefault("embed.sweep_interval", "1h")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.proxy_rate_limit", 120)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		// Missing config.yaml is not an error; env and defaults carry the load.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		ServerAddress:     v.GetString("server.address"),
		Environment:       v.GetString("server.environment"),
		Neo4jURI:          v.GetString("neo4j.uri"),
		Neo4jUser:         v.GetString("neo4j.user"),
		Neo4jPassword:     v.GetString("neo4j.password"),
		Neo4jDatabase:     v.GetString("neo4j.database"),
		SQLitePath:        v.GetString("sqlite.path"),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTIssuer:         v.GetString("jwt.issuer"),
		EmbedBaseURL:      v.GetString("embed.base_url"),
		DefaultExpiryDays: v.GetInt("embed.default_expiry_days"),
		MaxExpiryDays:     v.GetInt("embed.max_expiry_days"),
		SweepInterval:     v.GetDuration("embed.sweep_interval"),
		AllowedOrigins:    v.GetStringSlice("http.allowed_origins"),
		ProxyRateLimit:    v.GetInt("http.proxy_rate_limit"),
		LogLevel:          v.GetString("log.level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.DefaultExpiryDays < 1 {
		return fmt.Errorf("embed.default_expiry_days must be at least 1")
	}
	if c.MaxExpiryDays < c.DefaultExpiryDays {
		return fmt.Errorf("embed.max_expiry_days must be at least the default expiry")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("embed.sweep_interval must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_PASSWORD is required in production")
		}
		if c.EmbedBaseURL == "" {
			return fmt.Errorf("EMBED_BASE_URL is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
