package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finwise/internal/domain"
)

func TestRules_Classify(t *testing.T) {
	rules := NewRules()

	tests := []struct {
		name         string
		description  string
		txType       domain.TransactionType
		wantCategory string
		wantScore    float64
	}{
		{"freelance income", "Client payment for logo project", domain.TransactionTypeIncome, "Freelance/Gig Income", 0.6},
		{"gig income", "Weekend GIG payout", domain.TransactionTypeIncome, "Freelance/Gig Income", 0.6},
		{"salary", "Monthly Salary", domain.TransactionTypeIncome, "Salary", 0.6},
		{"wage", "daily wage", domain.TransactionTypeIncome, "Salary", 0.6},
		{"other income", "Gift from aunt", domain.TransactionTypeIncome, "Other Income", 0.5},
		{"swiggy", "Swiggy order", domain.TransactionTypeExpense, "Food & Dining", 0.6},
		{"zomato", "ZOMATO dinner", domain.TransactionTypeExpense, "Food & Dining", 0.6},
		{"uber", "Uber to office", domain.TransactionTypeExpense, "Transportation", 0.6},
		{"petrol", "Petrol pump", domain.TransactionTypeExpense, "Transportation", 0.6},
		{"rent", "House rent", domain.TransactionTypeExpense, "Bills & Utilities", 0.6},
		{"electricity", "Electricity bill", domain.TransactionTypeExpense, "Bills & Utilities", 0.6},
		{"amazon", "Amazon purchase", domain.TransactionTypeExpense, "Shopping", 0.6},
		{"other expense", "Cinema tickets", domain.TransactionTypeExpense, "Other Expense", 0.5},
		{"first match wins", "Food delivered by uber", domain.TransactionTypeExpense, "Food & Dining", 0.6},
		{"income keyword on expense", "Salary advance repayment", domain.TransactionTypeExpense, "Other Expense", 0.5},
		{"unknown type is expense", "Swiggy order", "", "Food & Dining", 0.6},
		{"empty description", "", domain.TransactionTypeIncome, "Other Income", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Classify(tt.description, tt.txType)
			if got.Category != tt.wantCategory || got.ConfidenceScore != tt.wantScore {
				t.Errorf("Classify(%q, %q) = %s/%v, want %s/%v",
					tt.description, tt.txType, got.Category, got.ConfidenceScore, tt.wantCategory, tt.wantScore)
			}
			if got.Source != domain.SourceRules {
				t.Errorf("source = %s, want rules", got.Source)
			}
		})
	}
}

func TestRules_ClassifyIsPure(t *testing.T) {
	rules := NewRules()
	first := rules.Classify("Ola ride home", domain.TransactionTypeExpense)
	for i := 0; i < 10; i++ {
		if got := rules.Classify("Ola ride home", domain.TransactionTypeExpense); got != first {
			t.Fatalf("call %d returned %+v, want %+v", i, got, first)
		}
	}
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "income: [unterminated"},
		{"missing defaults", "income:\n  rules: []\nexpense:\n  rules: []\n"},
		{
			"confidence out of range",
			"income:\n  default: {category: X, confidence: 1.5}\nexpense:\n  default: {category: Y, confidence: 0.5}\n",
		},
		{
			"rule without category",
			"income:\n  default: {category: X, confidence: 0.5}\n  rules:\n    - keywords: [a]\n      confidence: 0.5\nexpense:\n  default: {category: Y, confidence: 0.5}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRules([]byte(tt.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadRules_OverrideFile(t *testing.T) {
	content := `
income:
  default: {category: Other Income, confidence: 0.5}
expense:
  rules:
    - category: Entertainment
      confidence: 0.7
      keywords: [Netflix, Cinema]
  default: {category: Other Expense, confidence: 0.4}
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	got := rules.Classify("cinema tickets", domain.TransactionTypeExpense)
	if got.Category != "Entertainment" || got.ConfidenceScore != 0.7 {
		t.Errorf("unexpected classification: %+v", got)
	}
	got = rules.Classify("Swiggy order", domain.TransactionTypeExpense)
	if got.Category != "Other Expense" || got.ConfidenceScore != 0.4 {
		t.Errorf("unexpected default: %+v", got)
	}
}

func TestLoadRules_EmptyPathUsesBuiltIn(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if got := rules.Classify("Swiggy order", domain.TransactionTypeExpense); got.Category != "Food & Dining" {
		t.Errorf("unexpected category %s", got.Category)
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
