package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"climate-dashboard/pkg/database"
)

// EnvConfigPath names the environment variable holding an optional config file path
const EnvConfigPath = "CLIMATE_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the run archive connection settings.
// The archive is optional; everything else works without it.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// Connection converts the settings into a connection pool configuration
func (d DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// SimulationConfig holds generator defaults
type SimulationConfig struct {
	FieldPolicy  string  `mapstructure:"field_policy"`
	CacheSize    int     `mapstructure:"cache_size"`
	GridRows     int     `mapstructure:"grid_rows"`
	GridCols     int     `mapstructure:"grid_cols"`
	DefaultScale float64 `mapstructure:"default_scale"`
}

// LoadConfig reads configuration from the file named by CLIMATE_CONFIG (if set)
// and from CLIMATE_* environment variables
func LoadConfig() (*Config, error) {
	return Load(os.Getenv(EnvConfigPath))
}

// Load reads configuration from path and environment variables.
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// CLIMATE_SERVER_PORT overrides server.port
	v.SetEnvPrefix("CLIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "climate")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "climate_dashboard")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Simulation defaults
	v.SetDefault("simulation.field_policy", "density")
	v.SetDefault("simulation.cache_size", 256)
	v.SetDefault("simulation.grid_rows", 180)
	v.SetDefault("simulation.grid_cols", 360)
	v.SetDefault("simulation.default_scale", 4)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	// Validate Database config
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required when the database is enabled")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required when the database is enabled")
		}
		if c.Database.MaxOpenConns < 1 {
			return fmt.Errorf("database.max_open_conns must be at least 1")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	// Validate Simulation config
	validPolicies := map[string]bool{"density": true, "magnitude": true}
	if !validPolicies[c.Simulation.FieldPolicy] {
		return fmt.Errorf("simulation.field_policy must be one of: density, magnitude")
	}
	if c.Simulation.CacheSize < 0 {
		return fmt.Errorf("simulation.cache_size must not be negative")
	}
	if c.Simulation.GridRows < 2 || c.Simulation.GridCols < 2 {
		return fmt.Errorf("simulation.grid_rows and simulation.grid_cols must be at least 2")
	}
	if math.IsNaN(c.Simulation.DefaultScale) || c.Simulation.DefaultScale < 1 || c.Simulation.DefaultScale > 6 {
		return fmt.Errorf("simulation.default_scale must be between 1 and 6")
	}

	return nil
}
