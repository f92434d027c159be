// Package config loads service settings from an optional YAML file with
// TASKAPP_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. TASKAPP_JWT_SECRET.
const EnvPrefix = "TASKAPP"

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	LogLevel string `mapstructure:"log_level"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig is optional; an empty URL disables caching and cross-instance
// event fan-out.
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	Channel  string        `mapstructure:"channel"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type CounterConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

// Config is the top-level service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Counter  CounterConfig  `mapstructure:"counter"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8008")
	v.SetDefault("database.path", "tasks-management.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("jwt.secret", "development-insecure-secret-change-me")
	v.SetDefault("jwt.issuer", "task-management-api")
	v.SetDefault("jwt.audience", "task-management-clients")
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.channel", "task-events")
	v.SetDefault("redis.cache_ttl", 5*time.Minute)
	v.SetDefault("counter.max_attempts", 10)
	v.SetDefault("counter.backoff", 5*time.Millisecond)
}

// Load reads configuration from path (which may be empty or missing),
// then applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return errors.New("config: server.port is required")
	case c.Database.Path == "":
		return errors.New("config: database.path is required")
	case c.JWT.Secret == "":
		return errors.New("config: jwt.secret is required")
	case c.JWT.TTL <= 0:
		return errors.New("config: jwt.ttl must be positive")
	case c.Counter.MaxAttempts <= 0:
		return errors.New("config: counter.max_attempts must be positive")
	case c.Counter.Backoff < 0:
		return errors.New("config: counter.backoff must not be negative")
	}
	if !strings.HasPrefix(c.Server.Port, ":") && !strings.Contains(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	return nil
}
