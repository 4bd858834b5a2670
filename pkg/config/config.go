package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Supported store drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverProton = "proton"
)

// Config holds the application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"db"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Reader    ReaderConfig    `mapstructure:"reader"`
	Server    ServerConfig    `mapstructure:"server"`
	LogLevel  string          `mapstructure:"logLevel"`
}

// DatabaseConfig holds the connection parameters of the shared readings table
type DatabaseConfig struct {
	Driver      string        `mapstructure:"driver"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	Name        string        `mapstructure:"name"`
	Path        string        `mapstructure:"path"` // sqlite file
	Table       string        `mapstructure:"table"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
}

// Address returns host:port
func (d DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// GeneratorConfig controls the synthetic reading producer
type GeneratorConfig struct {
	Count       int           `mapstructure:"count"`
	Interval    time.Duration `mapstructure:"interval"`
	ProfileName string        `mapstructure:"profileName"`
}

// ReaderConfig controls the consumer
type ReaderConfig struct {
	Limit int `mapstructure:"limit"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	AllowedOrigins  string `mapstructure:"allowedOrigins"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
}

// plain DB_* names shared with the .env files of existing deployments
var dbEnvBindings = map[string]string{
	"db.driver":   "DB_DRIVER",
	"db.host":     "DB_HOST",
	"db.port":     "DB_PORT",
	"db.user":     "DB_USER",
	"db.password": "DB_PASSWORD",
	"db.name":     "DB_NAME",
	"db.path":     "DB_PATH",
	"db.table":    "DB_TABLE",
}

// LoadConfig loads the application configuration from an optional file,
// a .env file and environment variables. Each call works on its own viper
// instance so nothing is shared between callers.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set default values
	v.SetDefault("db.driver", DriverMySQL)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "usr")
	v.SetDefault("db.password", "sofe4630u")
	v.SetDefault("db.name", "Readings")
	v.SetDefault("db.path", "data/readings.db")
	v.SetDefault("db.table", "SmartMeter")
	v.SetDefault("db.dialTimeout", 10*time.Second)
	v.SetDefault("generator.count", 5)
	v.SetDefault("generator.interval", 2*time.Second)
	v.SetDefault("generator.profileName", "fake_smart_meter")
	v.SetDefault("reader.limit", 5)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowedOrigins", "*")
	v.SetDefault("server.shutdownTimeout", 10)
	v.SetDefault("logLevel", "info")

	// Allow environment variables to override config file
	v.SetEnvPrefix("SMARTMETER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range dbEnvBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	if err := v.BindEnv("logLevel", "LOG_LEVEL", "SMARTMETER_LOGLEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}

	// If config file is provided, read it
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			logrus.Warnf("Error reading config file: %v", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFile copies KEY=VALUE pairs from the .env file into the process
// environment without overriding variables that are already set.
func loadEnvFile() error {
	path := os.Getenv("SMARTMETER_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := gotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values that cannot be defaulted silently
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverProton:
		if c.Database.Host == "" {
			return fmt.Errorf("invalid DB_HOST: must not be empty")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid DB_PORT %d: must be between 1 and 65535", c.Database.Port)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("invalid DB_PATH: must not be empty")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: expected %s, %s or %s",
			c.Database.Driver, DriverMySQL, DriverSQLite, DriverProton)
	}

	if c.Database.Table == "" {
		return fmt.Errorf("invalid DB_TABLE: must not be empty")
	}
	if c.Generator.Count <= 0 {
		return fmt.Errorf("invalid generator count %d: must be greater than 0", c.Generator.Count)
	}
	if c.Generator.Interval < 0 {
		return fmt.Errorf("invalid generator interval %s: must not be negative", c.Generator.Interval)
	}
	if c.Generator.ProfileName == "" {
		return fmt.Errorf("invalid generator profile name: must not be empty")
	}
	if c.Reader.Limit <= 0 {
		return fmt.Errorf("invalid reader limit %d: must be greater than 0", c.Reader.Limit)
	}
	return nil
}

// ConfigureLogging sets the logrus level, falling back to info
func ConfigureLogging(level string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.Debugf("Log level set to: %s", lvl.String())
}
