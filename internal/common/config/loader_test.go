// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: forecast-bot\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Данные", cfg.Catalog.Root)
	assert.Equal(t, "Факты.xlsx", cfg.Catalog.FactsFile)
	assert.Equal(t, FactsBackendWorkbook, cfg.Facts.Backend)
	assert.Equal(t, ",", cfg.Locale.DecimalSeparator)
	assert.Equal(t, 60, cfg.Session.TTL)
	assert.Equal(t, ":8080", cfg.Metrics.Address)
	assert.Equal(t, 600, cfg.Database.Redis.TableTTL)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_REDIS_ADDRESS", "redis:6379")
	t.Setenv("CATALOG_ROOT", "/srv/data")
	path := writeConfig(t, `
database:
  redis:
    enabled: true
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
	assert.Equal(t, "/srv/data", cfg.Catalog.Root)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("FACTS_DB_HOST", "pg.internal")
	path := writeConfig(t, `
facts:
  backend: postgres
database:
  postgres:
    host: ${FACTS_DB_HOST}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pg.internal", cfg.Database.Postgres.Host)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=pg.internal")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "postgres backend needs host",
			mutate:  func(c *Config) { c.Facts.Backend = FactsBackendPostgres },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Facts.Backend = "s3" },
			wantErr: true,
		},
		{
			name: "redis enabled without address",
			mutate: func(c *Config) {
				c.Database.Redis.Enabled = true
				c.Database.Redis.Address = ""
			},
			wantErr: true,
		},
		{
			name:    "bad decimal separator",
			mutate:  func(c *Config) { c.Locale.DecimalSeparator = ";" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequireTelegram_MissingToken(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireTelegram())
}
