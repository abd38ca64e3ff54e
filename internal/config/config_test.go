package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every key Config reads so the host environment does not
// leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "AI_TIMEOUT", "STORE_DRIVER",
		"SQLITE_PATH", "DATABASE_URL", "BIGQUERY_PROJECT", "BIGQUERY_DATASET",
		"GCS_BUCKET", "CORS_ORIGINS", "CURRENCY_SYMBOL", "IMPORT_CONCURRENCY",
		"IMPORT_WORKERS", "INSIGHTS_CACHE_TTL", "RULES_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	if cfg.Port != want.Port || cfg.StoreDriver != StoreMemory || cfg.AIProvider != ProviderGemini {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.AITimeout != 30*time.Second || cfg.InsightsCacheTTL != 5*time.Minute {
		t.Errorf("unexpected durations: %s %s", cfg.AITimeout, cfg.InsightsCacheTTL)
	}
	if cfg.CurrencySymbol != "₹" {
		t.Errorf("CurrencySymbol = %q", cfg.CurrencySymbol)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-test")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("STORE_DRIVER", "SQLITE")
	t.Setenv("SQLITE_PATH", "/tmp/finwise.db")
	t.Setenv("IMPORT_CONCURRENCY", "8")
	t.Setenv("INSIGHTS_CACHE_TTL", "1m")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, http://localhost:3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.AIProvider != ProviderAnthropic || cfg.APIKey() != "sk-test" || cfg.Model() != "claude-test" {
		t.Errorf("unexpected AI settings: %+v", cfg)
	}
	if cfg.AITimeout != 5*time.Second || cfg.InsightsCacheTTL != time.Minute {
		t.Errorf("unexpected durations: %s %s", cfg.AITimeout, cfg.InsightsCacheTTL)
	}
	if cfg.StoreDriver != StoreSQLite || cfg.SQLitePath != "/tmp/finwise.db" {
		t.Errorf("unexpected store settings: %+v", cfg)
	}
	if cfg.ImportConcurrency != 8 {
		t.Errorf("ImportConcurrency = %d", cfg.ImportConcurrency)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://app.example.com" || origins[1] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins() = %v", origins)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GEMINI_API_KEY=from-dotenv\nCURRENCY_SYMBOL=$\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that already exist, even empty
	// ones, so unset them for this test.
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("CURRENCY_SYMBOL")
	t.Cleanup(func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("CURRENCY_SYMBOL")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GeminiAPIKey != "from-dotenv" || cfg.CurrencySymbol != "$" {
		t.Errorf("expected values from .env, got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AIProvider = "openai" }, wantErr: "AI_PROVIDER"},
		{name: "unknown store", mutate: func(c *Config) { c.StoreDriver = "mongo" }, wantErr: "STORE_DRIVER"},
		{name: "postgres without url", mutate: func(c *Config) { c.StoreDriver = StorePostgres }, wantErr: "DATABASE_URL"},
		{name: "bigquery without project", mutate: func(c *Config) { c.StoreDriver = StoreBigQuery }, wantErr: "BIGQUERY_PROJECT"},
		{name: "sqlite without path", mutate: func(c *Config) { c.StoreDriver = StoreSQLite; c.SQLitePath = "" }, wantErr: "SQLITE_PATH"},
		{name: "zero timeout", mutate: func(c *Config) { c.AITimeout = 0 }, wantErr: "AI_TIMEOUT"},
		{name: "zero concurrency", mutate: func(c *Config) { c.ImportConcurrency = 0 }, wantErr: "IMPORT_CONCURRENCY"},
		{name: "zero workers", mutate: func(c *Config) { c.ImportWorkers = 0 }, wantErr: "IMPORT_WORKERS"},
		{name: "postgres with url", mutate: func(c *Config) { c.StoreDriver = StorePostgres; c.DatabaseURL = "postgres://x" }},
		{name: "no ai", mutate: func(c *Config) { c.AIProvider = ProviderNone }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
