package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finwise/internal/ai"
	"github.com/dvloznov/finwise/internal/domain"
)

// MockRemoteClassifier is a hand-written RemoteClassifier for tests.
type MockRemoteClassifier struct {
	ClassifyTransactionFunc func(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error)
	Calls                   int
}

func (m *MockRemoteClassifier) ClassifyTransaction(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error) {
	m.Calls++
	if m.ClassifyTransactionFunc != nil {
		return m.ClassifyTransactionFunc(ctx, description, amount, txType)
	}
	return "", errors.New("not configured")
}

func respond(text string, err error) *MockRemoteClassifier {
	return &MockRemoteClassifier{
		ClassifyTransactionFunc: func(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error) {
			return text, err
		},
	}
}

func TestClassifier_UsesRemoteResult(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantCategory string
		wantScore    float64
	}{
		{
			name:         "plain json",
			response:     `{"category":"Entertainment","confidence_score":0.95,"reasoning":"movie"}`,
			wantCategory: "Entertainment",
			wantScore:    0.95,
		},
		{
			name:         "fenced json",
			response:     "```json\n{\"category\":\"Healthcare\",\"confidence_score\":0.8}\n```",
			wantCategory: "Healthcare",
			wantScore:    0.8,
		},
		{
			name:         "canonicalized case",
			response:     `{"category":"food & dining","confidence_score":0.7}`,
			wantCategory: "Food & Dining",
			wantScore:    0.7,
		},
		{
			name:         "unknown category accepted",
			response:     `{"category":"Pet Care","confidence_score":0.65}`,
			wantCategory: "Pet Care",
			wantScore:    0.65,
		},
		{
			name:         "boundary confidence",
			response:     `{"category":"Salary","confidence_score":1}`,
			wantCategory: "Salary",
			wantScore:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := respond(tt.response, nil)
			c := NewClassifier(remote, nil)

			got := c.Classify(context.Background(), "Movie night", 300, domain.TransactionTypeExpense)
			if got.Category != tt.wantCategory || got.ConfidenceScore != tt.wantScore {
				t.Errorf("got %s/%v, want %s/%v", got.Category, got.ConfidenceScore, tt.wantCategory, tt.wantScore)
			}
			if got.Source != domain.SourceAI {
				t.Errorf("source = %s, want ai", got.Source)
			}
			if remote.Calls != 1 {
				t.Errorf("expected 1 remote call, got %d", remote.Calls)
			}
		})
	}
}

func TestClassifier_FallsBackToRules(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"remote error", "", ai.ErrRemoteCall},
		{"timeout", "", context.DeadlineExceeded},
		{"not json", "I think this is food", nil},
		{"missing category", `{"confidence_score":0.9}`, nil},
		{"empty category", `{"category":"","confidence_score":0.9}`, nil},
		{"missing confidence", `{"category":"Shopping"}`, nil},
		{"confidence above range", `{"category":"Shopping","confidence_score":1.2}`, nil},
		{"negative confidence", `{"category":"Shopping","confidence_score":-0.1}`, nil},
		{"wrong type", `{"category":42,"confidence_score":0.9}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := respond(tt.response, tt.err)
			c := NewClassifier(remote, nil)

			got := c.Classify(context.Background(), "Swiggy order", 450, domain.TransactionTypeExpense)
			want := Result{Category: "Food & Dining", ConfidenceScore: 0.6, Source: domain.SourceRules}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
			if remote.Calls != 1 {
				t.Errorf("expected exactly 1 remote attempt, got %d", remote.Calls)
			}
		})
	}
}

func TestClassifier_NilRemoteIsRulesOnly(t *testing.T) {
	c := NewClassifier(nil, nil)

	got := c.Classify(context.Background(), "Monthly salary", 50000, domain.TransactionTypeIncome)
	if got.Category != "Salary" || got.Source != domain.SourceRules {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestClassifier_PassesTransactionToRemote(t *testing.T) {
	var gotDesc string
	var gotAmount float64
	var gotType domain.TransactionType

	remote := &MockRemoteClassifier{
		ClassifyTransactionFunc: func(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error) {
			gotDesc, gotAmount, gotType = description, amount, txType
			return `{"category":"Freelance/Gig Income","confidence_score":0.9}`, nil
		},
	}
	c := NewClassifier(remote, nil)
	c.Classify(context.Background(), "Upwork payout", 1200, domain.TransactionTypeIncome)

	if gotDesc != "Upwork payout" || gotAmount != 1200 || gotType != domain.TransactionTypeIncome {
		t.Errorf("remote received %q %v %q", gotDesc, gotAmount, gotType)
	}
}
