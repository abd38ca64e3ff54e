// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreBigQuery = "bigquery"
)

// AI providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port     string `koanf:"PORT"`
	LogLevel string `koanf:"LOG_LEVEL"`

	// AIProvider selects the model backend: gemini, anthropic or none.
	AIProvider      string        `koanf:"AI_PROVIDER"`
	GeminiAPIKey    string        `koanf:"GEMINI_API_KEY"`
	GeminiModel     string        `koanf:"GEMINI_MODEL"`
	AnthropicAPIKey string        `koanf:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `koanf:"ANTHROPIC_MODEL"`
	AITimeout       time.Duration `koanf:"AI_TIMEOUT"`

	// StoreDriver selects persistence: memory, sqlite, postgres or bigquery.
	StoreDriver     string `koanf:"STORE_DRIVER"`
	SQLitePath      string `koanf:"SQLITE_PATH"`
	DatabaseURL     string `koanf:"DATABASE_URL"`
	BigQueryProject string `koanf:"BIGQUERY_PROJECT"`
	BigQueryDataset string `koanf:"BIGQUERY_DATASET"`

	// GCSBucket enables archiving uploads and gs:// imports.
	GCSBucket string `koanf:"GCS_BUCKET"`

	// CORSOrigins is a comma-separated allow list; "*" allows any origin.
	CORSOrigins string `koanf:"CORS_ORIGINS"`

	CurrencySymbol    string        `koanf:"CURRENCY_SYMBOL"`
	ImportConcurrency int           `koanf:"IMPORT_CONCURRENCY"`
	ImportWorkers     int           `koanf:"IMPORT_WORKERS"`
	InsightsCacheTTL  time.Duration `koanf:"INSIGHTS_CACHE_TTL"`

	// RulesFile overrides the built-in keyword rules with a YAML file.
	RulesFile string `koanf:"RULES_FILE"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:              "8000",
		LogLevel:          "info",
		AIProvider:        ProviderGemini,
		AITimeout:         30 * time.Second,
		StoreDriver:       StoreMemory,
		SQLitePath:        "finwise.db",
		BigQueryDataset:   "finwise",
		CORSOrigins:       "http://localhost:3000,http://localhost:5173",
		CurrencySymbol:    "₹",
		ImportConcurrency: 4,
		ImportWorkers:     2,
		InsightsCacheTTL:  5 * time.Minute,
	}
}

// Load reads .env (when present) and the process environment, fills
// defaults and validates the result.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	k := koanf.New(".")
	if err := k.Load(env.ProviderWithValue("", ".", skipEmpty), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// skipEmpty drops unset variables so defaults survive.
func skipEmpty(key, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return key, value
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	switch c.AIProvider {
	case ProviderGemini, ProviderAnthropic, ProviderNone:
	default:
		return fmt.Errorf("AI_PROVIDER must be gemini, anthropic or none, got %q", c.AIProvider)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH environment variable is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres store")
		}
	case StoreBigQuery:
		if c.BigQueryProject == "" {
			return fmt.Errorf("BIGQUERY_PROJECT environment variable is required for the bigquery store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be memory, sqlite, postgres or bigquery, got %q", c.StoreDriver)
	}

	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %s", c.AITimeout)
	}
	if c.ImportConcurrency <= 0 {
		return fmt.Errorf("IMPORT_CONCURRENCY must be positive, got %d", c.ImportConcurrency)
	}
	if c.ImportWorkers <= 0 {
		return fmt.Errorf("IMPORT_WORKERS must be positive, got %d", c.ImportWorkers)
	}
	return nil
}

// APIKey returns the key for the selected AI provider.
func (c *Config) APIKey() string {
	switch c.AIProvider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// Model returns the configured model for the selected AI provider.
func (c *Config) Model() string {
	switch c.AIProvider {
	case ProviderGemini:
		return c.GeminiModel
	case ProviderAnthropic:
		return c.AnthropicModel
	default:
		return ""
	}
}

// AllowedOrigins splits CORSOrigins into a list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
