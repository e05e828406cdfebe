package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Database types
const (
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"
)

// Config is the process configuration.
type Config struct {
	AppEnv      string `koanf:"app_env" validate:"required,oneof=development production test"`
	Port        int    `koanf:"port" validate:"min=1,max=65535"`
	DBType      string `koanf:"db_type" validate:"required,oneof=postgres sqlite"`
	DatabaseURL string `koanf:"database_url" validate:"required"`
	LogLevel    string `koanf:"log_level" validate:"omitempty,oneof=debug info warn error"`
	BodyLimit   int    `koanf:"body_limit" validate:"min=1024"` // bytes
}

// Defaults returns the values used when nothing overrides them.
func Defaults() map[string]any {
	return map[string]any{
		"app_env":      "production",
		"port":         3000,
		"db_type":      DBTypeSQLite,
		"database_url": "file:formfield.db?_pragma=foreign_keys(1)",
		"log_level":    "info",
		"body_limit":   1 << 20,
	}
}

// IsDevelopment reports whether the app runs in development mode.
func (c Config) IsDevelopment() bool { return c.AppEnv == "development" }

// Load reads the configuration. Priority: environment > CONFIG_FILE (JSON) >
// defaults. A .env file in the working directory is loaded into the
// environment first, without overriding variables already set. It runs
// before the logger exists, so failures are returned, not logged.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	k := koanf.New(".")
	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envTransform maps DATABASE_URL → database_url. Variables that are not
// configuration keys are dropped.
func envTransform(s string) string {
	key := strings.ToLower(s)
	if _, ok := Defaults()[key]; !ok {
		return ""
	}
	return key
}
