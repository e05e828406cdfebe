package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range Defaults() {
		t.Setenv(key, "")
		os.Unsetenv(key)
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
	t.Setenv("CONFIG_FILE", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, DBTypeSQLite, cfg.DBType)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 8080, "db_type": "postgres", "database_url": "postgres://file"}`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DBTypePostgres, cfg.DBType)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.json"))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to load config file")
}

func TestLoad_LogSettingsFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_env": "development", "log_level": "warn"}`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "warn", cfg.LogLevel)
}
