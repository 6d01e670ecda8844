package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darkodi/shortstore/internal/logger"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const envPrefix = "SHORTENER"

// MaxURLLength caps validation.max_length. A stored URL, even with every
// character quoted, must fit in one 1 MiB line of the mapping file.
const MaxURLLength = 256 << 10

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Log        logger.Config    `mapstructure:"log"`
	Validation ValidationConfig `mapstructure:"validation"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment string `mapstructure:"environment"` // "development", "production", "testing"
}

// StorageConfig selects and configures the mapping backend
type StorageConfig struct {
	Driver   string      `mapstructure:"driver"`    // "file", "sqlite", "postgres", "redis"
	Path     string      `mapstructure:"path"`      // CSV file for the file driver
	DSN      string      `mapstructure:"dsn"`       // sqlite file or postgres connection string
	RedisKey string      `mapstructure:"redis_key"` // key holding the mapping document
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Address          string        `mapstructure:"address"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// ValidationConfig tunes URL validation
type ValidationConfig struct {
	MaxLength       int      `mapstructure:"max_length"`
	BlockedDomains  []string `mapstructure:"blocked_domains"`
	BlockPrivateIPs bool     `mapstructure:"block_private_ips"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"env":        "app.environment",
	"driver":     "storage.driver",
	"path":       "storage.path",
	"dsn":        "storage.dsn",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Load reads configuration from an optional .env file, an optional YAML
// config file, SHORTENER_* environment variables and bound flags, in
// increasing order of precedence. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("shortener")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// sqlite falls back to a local database file
	if cfg.Storage.Driver == DriverSQLite && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "./urls.db"
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "url_mappings.csv")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_key", "shortener:mappings")
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.operation_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("validation.max_length", 2048)
	v.SetDefault("validation.blocked_domains", []string{})
	v.SetDefault("validation.block_private_ips", false)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			return errors.New("storage path cannot be empty")
		}
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage dsn cannot be empty for driver %s", c.Storage.Driver)
		}
	case DriverRedis:
		if c.Storage.Redis.Address == "" {
			return errors.New("redis address cannot be empty")
		}
		if c.Storage.RedisKey == "" {
			return errors.New("redis key cannot be empty")
		}
		if c.Storage.Redis.OperationTimeout <= 0 {
			return errors.New("redis operation timeout must be positive")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be file, sqlite, postgres, or redis)", c.Storage.Driver)
	}

	// Validate environment
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"testing":     true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, production, or testing)", c.App.Environment)
	}
	// Validate log level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.Validation.MaxLength <= 0 || c.Validation.MaxLength > MaxURLLength {
		return fmt.Errorf("invalid max url length: %d (must be 1..%d)", c.Validation.MaxLength, MaxURLLength)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
