package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Authentication configuration
	Auth AuthConfig `mapstructure:"auth"`

	// Report configuration
	Report ReportConfig `mapstructure:"report"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`

	// DemoRoutes enables the unauthenticated demo user provisioning
	// endpoint. Off unless explicitly turned on.
	DemoRoutes bool `mapstructure:"demo_routes"`
}

// DatabaseConfig holds the embedded database configuration
type DatabaseConfig struct {
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// AuthConfig holds session and credential configuration
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	SessionTTL int    `mapstructure:"session_ttl"`
	CookieName string `mapstructure:"cookie_name"`

	// HashPasswords switches credential storage from the demo plaintext
	// comparison to bcrypt. Seeded users follow the active mode.
	HashPasswords bool `mapstructure:"hash_passwords"`
}

// ReportConfig holds PDF report configuration
type ReportConfig struct {
	LogoPath string `mapstructure:"logo_path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/clinic")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)
	viper.SetDefault("server.demo_routes", false)

	viper.SetDefault("database.path", "clinic.db")
	viper.SetDefault("database.max_open_conns", 1)
	viper.SetDefault("database.max_idle_conns", 1)

	viper.SetDefault("auth.session_ttl", 3600)
	viper.SetDefault("auth.cookie_name", "clinic_session")
	viper.SetDefault("auth.hash_passwords", false)

	viper.SetDefault("report.logo_path", "static/logo.png")

	viper.SetDefault("log_level", "info")
}

// overrideWithEnv overrides configuration with environment variables
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if dbPath := os.Getenv("CLINIC_DB_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	if jwtSecret := os.Getenv("CLINIC_JWT_SECRET"); jwtSecret != "" {
		config.Auth.JWTSecret = jwtSecret
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth JWT secret is required")
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Auth.SessionTTL <= 0 {
		return fmt.Errorf("invalid session TTL: %d", config.Auth.SessionTTL)
	}

	return nil
}
