package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults. Every value can be overridden via config.yaml and again via
// environment variables.
const (
	DefaultListenAddr = ":8080"

	DefaultPostgresMaxOpenConns    = 20
	DefaultPostgresMaxIdleConns    = 10
	DefaultPostgresConnMaxLifetime = 30 * time.Minute

	DefaultProjectCacheTTL = 5 * time.Minute
)

// Duration wraps time.Duration so YAML values like "30s" or "10m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PostgresConfig struct {
	DSN             string   `yaml:"dsn"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr            string   `yaml:"addr"`
	Password        string   `yaml:"password"`
	ProjectCacheTTL Duration `yaml:"project_cache_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Addr: DefaultListenAddr},
		Postgres: PostgresConfig{
			MaxOpenConns:    DefaultPostgresMaxOpenConns,
			MaxIdleConns:    DefaultPostgresMaxIdleConns,
			ConnMaxLifetime: Duration(DefaultPostgresConnMaxLifetime),
		},
		Redis: RedisConfig{ProjectCacheTTL: Duration(DefaultProjectCacheTTL)},
		Log:   LogConfig{Level: "info"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Server.Addr = getString("LISTEN_ADDR", cfg.Server.Addr)
	cfg.Postgres.DSN = getString("POSTGRES_DSN", cfg.Postgres.DSN)
	cfg.Postgres.MaxOpenConns = getInt("POSTGRES_MAX_OPEN_CONNS", cfg.Postgres.MaxOpenConns)
	cfg.Postgres.MaxIdleConns = getInt("POSTGRES_MAX_IDLE_CONNS", cfg.Postgres.MaxIdleConns)
	cfg.Redis.Addr = getString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Log.Level = getString("LOG_LEVEL", cfg.Log.Level)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is not set")
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
