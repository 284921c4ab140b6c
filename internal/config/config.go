// Package config loads bottler settings from defaults, an optional TOML file,
// and BOTTLER_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
)

type Config struct {
	HTTPAddr string `toml:"http_addr" env:"HTTP_ADDR"`
	GRPCAddr string `toml:"grpc_addr" env:"GRPC_ADDR"`

	Store      string `toml:"store" env:"STORE"`
	MySQLDSN   string `toml:"mysql_dsn" env:"MYSQL_DSN"`
	SQLitePath string `toml:"sqlite_path" env:"SQLITE_PATH"`

	MySQLMaxOpenConns    int           `toml:"mysql_max_open_conns" env:"MYSQL_MAX_OPEN_CONNS"`
	MySQLMaxIdleConns    int           `toml:"mysql_max_idle_conns" env:"MYSQL_MAX_IDLE_CONNS"`
	MySQLConnMaxLifetime time.Duration `toml:"-" env:"MYSQL_CONN_MAX_LIFETIME"`

	// RedisAddr enables delivery idempotency when set.
	RedisAddr string `toml:"redis_addr" env:"REDIS_ADDR"`

	RecipeCount  int `toml:"recipe_count" env:"RECIPE_COUNT"`
	DefaultPrice int `toml:"default_price" env:"DEFAULT_PRICE"`

	LogLevel  string `toml:"log_level" env:"LOG_LEVEL"`
	LogPretty bool   `toml:"log_pretty" env:"LOG_PRETTY"`

	ShutdownTimeout time.Duration `toml:"-" env:"SHUTDOWN_TIMEOUT"`
}

func Default() Config {
	return Config{
		HTTPAddr:             ":8080",
		GRPCAddr:             ":50051",
		Store:                StoreSQLite,
		MySQLDSN:             "root:root@tcp(localhost:3306)/potionshop",
		SQLitePath:           "bottler.db",
		MySQLMaxOpenConns:    50,
		MySQLMaxIdleConns:    25,
		MySQLConnMaxLifetime: 5 * time.Minute,
		RecipeCount:          10,
		DefaultPrice:         30,
		LogLevel:             "info",
		ShutdownTimeout:      5 * time.Second,
	}
}

// fileDurations carries durations as strings since TOML has no duration type.
type fileDurations struct {
	MySQLConnMaxLifetime string `toml:"mysql_conn_max_lifetime"`
	ShutdownTimeout      string `toml:"shutdown_timeout"`
}

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "BOTTLER_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	var raw fileDurations
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if meta.IsDefined("mysql_conn_max_lifetime") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.MySQLConnMaxLifetime))
		if err != nil {
			return fmt.Errorf("parse mysql_conn_max_lifetime: %w", err)
		}
		cfg.MySQLConnMaxLifetime = d
	}
	if meta.IsDefined("shutdown_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ShutdownTimeout))
		if err != nil {
			return fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite store")
		}
	case StoreMySQL:
		if strings.TrimSpace(c.MySQLDSN) == "" {
			return fmt.Errorf("mysql_dsn is required for the mysql store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.RecipeCount <= 0 {
		return fmt.Errorf("recipe_count must be positive, got %d", c.RecipeCount)
	}
	if c.DefaultPrice < 0 {
		return fmt.Errorf("default_price cannot be negative, got %d", c.DefaultPrice)
	}
	return nil
}
