// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<env>.yaml on top,
// then lets the environment override individual keys.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile reads a single YAML file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindKeys(v)
	return v
}

// bindKeys registers every key so AutomaticEnv can override keys absent from
// the YAML files.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.name", "app.version", "app.environment",
		"telegram.token", "telegram.poll_timeout", "telegram.api_timeout", "telegram.debug",
		"catalog.root", "catalog.facts_file",
		"facts.backend",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password", "database.postgres.sslmode",
		"database.postgres.max_connections", "database.postgres.max_idle",
		"database.redis.enabled", "database.redis.address", "database.redis.password",
		"database.redis.db", "database.redis.table_ttl",
		"session.ttl", "session.cleanup_interval",
		"locale.decimal_separator",
		"logging.level", "logging.format", "logging.output", "logging.file",
		"metrics.address",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig picks up the conventional variable names that do not
// follow the dotted-key scheme.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Telegram.Token == "" {
		if val := os.Getenv("TELEGRAM_BOT_TOKEN"); val != "" {
			cfg.Telegram.Token = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "forecast-bot"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 60
	}
	if cfg.Telegram.APITimeout == 0 {
		cfg.Telegram.APITimeout = 75000
	}

	if cfg.Catalog.Root == "" {
		cfg.Catalog.Root = "Данные"
	}
	if cfg.Catalog.FactsFile == "" {
		cfg.Catalog.FactsFile = "Факты.xlsx"
	}
	if cfg.Facts.Backend == "" {
		cfg.Facts.Backend = FactsBackendWorkbook
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.TableTTL == 0 {
		cfg.Database.Redis.TableTTL = 600
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 60
	}
	if cfg.Session.CleanupInterval == 0 {
		cfg.Session.CleanupInterval = 10
	}

	if cfg.Locale.DecimalSeparator == "" {
		cfg.Locale.DecimalSeparator = ","
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":8080"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Facts.Backend {
	case FactsBackendWorkbook:
	case FactsBackendPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres facts backend")
		}
	default:
		return fmt.Errorf("unknown facts backend %q", cfg.Facts.Backend)
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}
	if cfg.Locale.DecimalSeparator != "," && cfg.Locale.DecimalSeparator != "." {
		return fmt.Errorf("locale.decimal_separator must be ',' or '.'")
	}
	return nil
}

// RequireTelegram checks the settings needed only by the serve command.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token (or TELEGRAM_BOT_TOKEN) is required")
	}
	return nil
}
