// Package config はアプリケーション設定を .env・環境変数・デフォルト値から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Stream    StreamConfig    `mapstructure:"stream"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type AppConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"` // local, prod
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	File       string `mapstructure:"file"`   // 空なら標準出力のみ
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DBConfig struct {
	Driver        string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN           string        `mapstructure:"dsn"`
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"`
	InstanceName  string        `mapstructure:"instance_name"`
	RunMigrations bool          `mapstructure:"run_migrations"`
	ConnectWait   time.Duration `mapstructure:"connect_wait"`
}

// RedisConfig の Addr が空の場合、Redisは使用しません。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type StreamConfig struct {
	TickInterval       time.Duration `mapstructure:"tick_interval"`
	MaxResolveFailures int           `mapstructure:"max_resolve_failures"` // 0 = 諦めない
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	NotifyChanges      bool          `mapstructure:"notify_changes"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

var keys = []string{
	"app.port", "app.env", "app.shutdown_timeout",
	"log.level", "log.format", "log.file", "log.max_size_mb", "log.max_backups", "log.max_age_days",
	"db.driver", "db.dsn", "db.host", "db.port", "db.user", "db.password", "db.name",
	"db.instance_name", "db.run_migrations", "db.connect_wait",
	"redis.addr", "redis.password", "redis.db",
	"jwt.secret", "jwt.expiration",
	"stream.tick_interval", "stream.max_resolve_failures", "stream.write_timeout", "stream.notify_changes",
	"ratelimit.rps", "ratelimit.burst",
	"cors.allow_origins",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.instance_name", "")
	v.SetDefault("db.run_migrations", true)
	v.SetDefault("db.connect_wait", 30*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("stream.tick_interval", time.Second)
	v.SetDefault("stream.max_resolve_failures", 3)
	v.SetDefault("stream.write_timeout", 5*time.Second)
	v.SetDefault("stream.notify_changes", false)

	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
}

// Load reads configuration from .env, environment variables and defaults.
// Environment variables map dot keys to underscores (stream.tick_interval -> STREAM_TICK_INTERVAL).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	}
	if c.JWT.Expiration <= 0 {
		errs = append(errs, errors.New("jwt.expiration must be positive"))
	}
	if c.Stream.TickInterval <= 0 {
		errs = append(errs, errors.New("stream.tick_interval must be positive"))
	}
	if c.Stream.MaxResolveFailures < 0 {
		errs = append(errs, errors.New("stream.max_resolve_failures must not be negative"))
	}
	if c.Stream.WriteTimeout <= 0 {
		errs = append(errs, errors.New("stream.write_timeout must be positive"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("ratelimit.rps and ratelimit.burst must be positive"))
	}
	switch c.DB.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("unsupported db.driver %q", c.DB.Driver))
	}
	return errors.Join(errs...)
}
