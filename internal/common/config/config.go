// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Facts    FactsConfig    `mapstructure:"facts"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Locale   LocaleConfig   `mapstructure:"locale"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"` // seconds
	APITimeout  int    `mapstructure:"api_timeout"`  // milliseconds
	Debug       bool   `mapstructure:"debug"`
}

type CatalogConfig struct {
	Root      string `mapstructure:"root"`
	FactsFile string `mapstructure:"facts_file"`
}

const (
	FactsBackendWorkbook = "workbook"
	FactsBackendPostgres = "postgres"
)

type FactsConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TableTTL int    `mapstructure:"table_ttl"` // seconds
}

func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TableTTL) * time.Second
}

type SessionConfig struct {
	TTL             int `mapstructure:"ttl"`              // minutes
	CleanupInterval int `mapstructure:"cleanup_interval"` // minutes
}

type LocaleConfig struct {
	DecimalSeparator string `mapstructure:"decimal_separator"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
