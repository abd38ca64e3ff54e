package coaching

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finwise/internal/ai"
	"github.com/dvloznov/finwise/internal/domain"
)

// MockRemoteInsights is a hand-written RemoteInsights for tests.
type MockRemoteInsights struct {
	GenerateInsightsFunc func(ctx context.Context, contextText string) (string, error)
	Contexts             []string
}

func (m *MockRemoteInsights) GenerateInsights(ctx context.Context, contextText string) (string, error) {
	m.Contexts = append(m.Contexts, contextText)
	if m.GenerateInsightsFunc != nil {
		return m.GenerateInsightsFunc(ctx, contextText)
	}
	return "", errors.New("not configured")
}

func remoteReturning(text string, err error) *MockRemoteInsights {
	return &MockRemoteInsights{
		GenerateInsightsFunc: func(ctx context.Context, contextText string) (string, error) {
			return text, err
		},
	}
}

func sampleAnalysis() domain.AnalysisResult {
	return domain.AnalysisResult{
		IncomeAnalysis: domain.IncomeAnalysis{
			Total:             30000,
			ByCategory:        domain.CategoryTotals{{Category: "Freelance/Gig Income", Total: 30000}},
			Count:             3,
			VolatilityPercent: 42.5,
		},
		ExpenseAnalysis: domain.ExpenseAnalysis{
			Total:         12000,
			ByCategory:    domain.CategoryTotals{{Category: "Food & Dining", Total: 4000}, {Category: "Bills & Utilities", Total: 8000}},
			Count:         5,
			TopCategories: []domain.CategoryTotal{{Category: "Bills & Utilities", Total: 8000}, {Category: "Food & Dining", Total: 4000}},
		},
		NetSavings:         18000,
		SavingsRatePercent: 60,
	}
}

func TestGenerator_UsesRemoteAdvice(t *testing.T) {
	remote := remoteReturning("```json\n{\"insights\":[\"a\",\"b\",\"c\",\"d\"],\"recommendations\":[\"r1\"]}\n```", nil)
	g := NewGenerator(remote, nil)

	advice := g.Generate(context.Background(), sampleAnalysis(), nil)

	if advice.Source != domain.SourceAI {
		t.Errorf("source = %s, want ai", advice.Source)
	}
	if len(advice.Insights) != MaxItems || advice.Insights[0] != "a" {
		t.Errorf("insights = %v, want first 3", advice.Insights)
	}
	if len(advice.Recommendations) != 1 || advice.Recommendations[0] != "r1" {
		t.Errorf("recommendations = %v", advice.Recommendations)
	}
	if len(remote.Contexts) != 1 {
		t.Errorf("expected exactly one remote call, got %d", len(remote.Contexts))
	}
}

func TestGenerator_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{"remote error", "", ai.ErrRemoteCall},
		{"not json", "Sure! Here are some tips.", nil},
		{"both lists empty", `{"insights":[],"recommendations":[]}`, nil},
		{"missing lists", `{}`, nil},
		{"blank entries", `{"insights":["  "],"recommendations":[""]}`, nil},
		{"wrong shape", `{"insights":"save more"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := remoteReturning(tt.text, tt.err)
			g := NewGenerator(remote, nil)
			analysis := sampleAnalysis()

			got := g.Generate(context.Background(), analysis, nil)
			want := NewRuleEngine("").Generate(analysis)

			if got.Source != domain.SourceRules {
				t.Errorf("source = %s, want rules", got.Source)
			}
			if strings.Join(got.Insights, "|") != strings.Join(want.Insights, "|") {
				t.Errorf("insights = %v, want %v", got.Insights, want.Insights)
			}
			if strings.Join(got.Recommendations, "|") != strings.Join(want.Recommendations, "|") {
				t.Errorf("recommendations = %v, want %v", got.Recommendations, want.Recommendations)
			}
			if len(remote.Contexts) != 1 {
				t.Errorf("expected exactly one remote call, got %d", len(remote.Contexts))
			}
		})
	}
}

func TestGenerator_NilRemoteIsRulesOnly(t *testing.T) {
	advice := NewGenerator(nil, nil).Generate(context.Background(), sampleAnalysis(), nil)
	if advice.Source != domain.SourceRules || len(advice.Insights) == 0 {
		t.Errorf("unexpected advice: %+v", advice)
	}
}

func TestBuildContext(t *testing.T) {
	engine := NewRuleEngine("")
	goals := []domain.GoalRecord{
		{Title: "Emergency fund", TargetAmount: 50000, TargetDate: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), CurrentAmount: 5000},
		{Title: "Laptop", TargetAmount: 80000, TargetDate: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	text := engine.BuildContext(sampleAnalysis(), goals)

	for _, want := range []string{
		"Total Income: ₹30,000.00",
		"Total Expenses: ₹12,000.00",
		"Net Savings: ₹18,000.00",
		"Savings Rate: 60.0%",
		"Income Volatility: 42.5%",
		"Number of Income Transactions: 3",
		"Number of Expense Transactions: 5",
		`"Freelance/Gig Income": 30000`,
		`"Bills & Utilities": 8000`,
		"User Goal: Save ₹50,000.00 by 2026-12-31 (Emergency fund), ₹5,000.00 saved so far",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("context missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "Laptop") {
		t.Error("only the first goal should be included")
	}

	// Top categories keep their order in the rendered object.
	top := text[strings.Index(text, "Top Expense Categories"):]
	if strings.Index(top, "Bills & Utilities") > strings.Index(top, "Food & Dining") {
		t.Errorf("top categories out of order:\n%s", top)
	}
}

func TestBuildContext_NoGoals(t *testing.T) {
	text := NewRuleEngine("").BuildContext(sampleAnalysis(), nil)
	if strings.Contains(text, "User Goal") {
		t.Error("unexpected goal line without goals")
	}
}
