package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/validator"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration, read from a YAML file and overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bot       BotConfig       `yaml:"bot"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	// RoomIdleTimeout is how long an untouched room stays in memory. Zero keeps rooms forever.
	RoomIdleTimeout time.Duration `yaml:"room_idle_timeout" validate:"gte=0"`
}

type RedisConfig struct {
	Addr        string        `yaml:"addr" validate:"required"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" validate:"gte=0"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type TelemetryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Endpoint       string `yaml:"endpoint" validate:"required_if=Enabled true"`
	ServiceName    string `yaml:"service_name" validate:"required"`
	ServiceVersion string `yaml:"service_version"`
	Stdout         bool   `yaml:"stdout"`
}

type BotConfig struct {
	DefaultDifficulty string `yaml:"default_difficulty" validate:"omitempty,oneof=easy medium hard"`
	AutoReply         bool   `yaml:"auto_reply"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret" validate:"required,min=16"`
	TokenTTL time.Duration `yaml:"token_ttl" validate:"gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			RoomIdleTimeout: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			SnapshotTTL: 24 * time.Hour,
		},
		SQLite: SQLiteConfig{
			Path: "./results.db",
		},
		Telemetry: TelemetryConfig{
			Endpoint:       "otel-collector:4317",
			ServiceName:    "tic-tac-toe",
			ServiceVersion: "v0.2.0",
		},
		Bot: BotConfig{
			DefaultDifficulty: "hard",
			AutoReply:         true,
		},
		Auth: AuthConfig{
			Secret:   "change-me-room-token-secret",
			TokenTTL: 24 * time.Hour,
		},
	}
}

// Load reads the file at path over the defaults, applies environment overrides and validates the
// result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REDIS_CONNSTRING"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("ROOM_TOKEN_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("OTEL_COLLECTOR_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
}
