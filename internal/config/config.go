// Package config loads service configuration from flags, environment
// variables (NEUROSCREEN_*) and an optional neuroscreen.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the service configuration.
type Config struct {
	Addr string `mapstructure:"addr"`

	// Store selects the session backend: memory, sqlite or redis.
	Store         string `mapstructure:"store"`
	DB            string `mapstructure:"db"`
	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	RedisDB       int    `mapstructure:"redis-db"`

	// SessionTTL evicts sessions idle for longer than this.
	SessionTTL    time.Duration `mapstructure:"session-ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`

	AdvisorTimeout time.Duration `mapstructure:"advisor-timeout"`
	TotalQuestions int           `mapstructure:"total-questions"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogFile   string `mapstructure:"log-file"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Addr:           ":8080",
		Store:          StoreMemory,
		RedisAddr:      "localhost:6379",
		SessionTTL:     30 * time.Minute,
		SweepInterval:  time.Minute,
		AdvisorTimeout: 3 * time.Second,
		TotalQuestions: 20,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// RegisterFlags adds the service flags, with defaults, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Addr, "HTTP listen address")
	fs.String("store", d.Store, "Session store backend (memory, sqlite, redis)")
	fs.String("db", "", "SQLite database path (default: platform data dir)")
	fs.String("redis-addr", d.RedisAddr, "Redis address")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", d.RedisDB, "Redis database number")
	fs.Duration("session-ttl", d.SessionTTL, "Evict sessions idle for longer than this")
	fs.Duration("sweep-interval", d.SweepInterval, "How often to sweep idle sessions")
	fs.Duration("advisor-timeout", d.AdvisorTimeout, "Timeout for LLM next-action advice")
	fs.Int("total-questions", d.TotalQuestions, "Questions per session")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("log-format", d.LogFormat, "Log format (json, console)")
	fs.String("log-file", "", "Also write logs to this rotated file")
}

// Load resolves configuration with precedence flags > env > file > defaults.
// fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("store", d.Store)
	v.SetDefault("db", d.DB)
	v.SetDefault("redis-addr", d.RedisAddr)
	v.SetDefault("redis-password", d.RedisPassword)
	v.SetDefault("redis-db", d.RedisDB)
	v.SetDefault("session-ttl", d.SessionTTL)
	v.SetDefault("sweep-interval", d.SweepInterval)
	v.SetDefault("advisor-timeout", d.AdvisorTimeout)
	v.SetDefault("total-questions", d.TotalQuestions)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("log-file", d.LogFile)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("NEUROSCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("neuroscreen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/neuroscreen")
	v.AddConfigPath("/etc/neuroscreen")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and the store selection.
func (c Config) Validate() error {
	var errs []string
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		errs = append(errs, fmt.Sprintf("store %q is not one of memory, sqlite, redis", c.Store))
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		errs = append(errs, "redis-addr is required for the redis store")
	}
	if c.SessionTTL < 0 {
		errs = append(errs, "session-ttl must not be negative")
	}
	if c.SessionTTL > 0 && c.SweepInterval <= 0 {
		errs = append(errs, "sweep-interval must be positive when session-ttl is set")
	}
	if c.AdvisorTimeout <= 0 {
		errs = append(errs, "advisor-timeout must be positive")
	}
	if c.TotalQuestions <= 0 {
		errs = append(errs, "total-questions must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
