// Package config loads and validates harvester configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HARVESTER_FETCH_CONCURRENCY=10
const EnvPrefix = "HARVESTER"

// Config captures all harvester configuration knobs.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CatalogConfig locates the catalog page and tells how to read it.
type CatalogConfig struct {
	URL      string `mapstructure:"url" validate:"required,url"`
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	Format   string `mapstructure:"format" validate:"oneof=html feed"`
	Selector string `mapstructure:"selector"`
}

// FetchConfig governs detail page retrieval.
type FetchConfig struct {
	Concurrency int           `mapstructure:"concurrency" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Engine      string        `mapstructure:"engine" validate:"oneof=http colly"`
	Client      string        `mapstructure:"client" validate:"oneof=cloudflare browser"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// MongoConfig points at the primary recipe store.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database" validate:"required"`
	Collection string `mapstructure:"collection" validate:"required"`
}

// PostgresConfig controls the relational store and replication target.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table" validate:"required"`
}

// SupabaseConfig holds Supabase credentials.
type SupabaseConfig struct {
	URL              string `mapstructure:"url" validate:"omitempty,url"`
	Key              string `mapstructure:"key"`
	Password         string `mapstructure:"password"`
	ConnectionString string `mapstructure:"connection_string"`
	Table            string `mapstructure:"table" validate:"required"`
}

// OutputConfig controls the JSON export.
type OutputConfig struct {
	JSON string `mapstructure:"json"`
}

// ServerConfig controls the HTTP report server.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// LoggingConfig toggles zap features and the optional rotating log file.
type LoggingConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" validate:"min=1"`
	MaxBackups  int    `mapstructure:"max_backups" validate:"min=0"`
}

// NewViper returns a Viper instance with defaults and environment overrides registered.
// Callers may bind command line flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the config file (explicit path, or harvester.yaml in . and $HOME/.harvester),
// decodes it into a Config and validates it. A missing default config file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = NewViper()
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("harvester")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.harvester")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.url", "https://kulinaria.ge/receptebi/cat/karTuli-samzareulo/")
	v.SetDefault("catalog.base_url", "https://kulinaria.ge")
	v.SetDefault("catalog.format", "html")
	v.SetDefault("catalog.selector", "a.box__title")
	v.SetDefault("fetch.concurrency", 5)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.engine", "http")
	v.SetDefault("fetch.client", "cloudflare")
	v.SetDefault("fetch.user_agent", "recipe-harvest/1.0")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017/")
	v.SetDefault("mongo.database", "mydatabase")
	v.SetDefault("mongo.collection", "recipes")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "recipes")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("supabase.password", "")
	v.SetDefault("supabase.connection_string", "")
	v.SetDefault("supabase.table", "recipes")
	v.SetDefault("output.json", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
