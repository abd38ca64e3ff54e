package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finwise/internal/config"
	"github.com/dvloznov/finwise/internal/domain"
)

func rulesOnlyConfig() *config.Config {
	cfg := config.Default()
	cfg.AIProvider = config.ProviderNone
	return &cfg
}

func TestNew_MemoryRulesOnly(t *testing.T) {
	a, err := New(context.Background(), rulesOnlyConfig(), zerolog.Nop(), WithInsightsCache())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer a.Close()

	if a.Storage != nil {
		t.Error("expected no GCS storage without a bucket")
	}
	if a.Cache == nil {
		t.Fatal("expected insights cache")
	}

	got := a.Classifier.Classify(context.Background(), "Swiggy order", 450, domain.TransactionTypeExpense)
	if got.Category != "Food & Dining" || got.Source != domain.SourceRules {
		t.Errorf("Classify() = %+v", got)
	}

	result, err := a.Importer.ImportCSV(context.Background(), "", "jan.csv",
		[]byte("date,amount,type,description\n2026-01-05,1000,income,Salary\n"))
	if err != nil {
		t.Fatalf("ImportCSV() error: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("Added = %d, want 1", result.Added)
	}

	txs, err := a.Store.ListTransactions(context.Background(), domain.DefaultUserID, 10, 0)
	if err != nil || len(txs) != 1 {
		t.Fatalf("ListTransactions() = %d, %v", len(txs), err)
	}
}

func TestNew_WithoutCache(t *testing.T) {
	a, err := New(context.Background(), rulesOnlyConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.Cache != nil {
		t.Error("expected no cache")
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestNew_SQLite(t *testing.T) {
	cfg := rulesOnlyConfig()
	cfg.StoreDriver = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "finwise.db")

	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(cfg.SQLitePath); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestNew_RulesFile(t *testing.T) {
	cfg := rulesOnlyConfig()
	cfg.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}

func TestNew_UnknownStore(t *testing.T) {
	cfg := rulesOnlyConfig()
	cfg.StoreDriver = "mongo"

	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}
