package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finwise/internal/domain"
)

// MockTextGenerator is a hand-written TextGenerator for tests.
type MockTextGenerator struct {
	GenerateTextFunc func(ctx context.Context, prompt string) (string, error)
	Prompts          []string
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt)
	}
	return "{}", nil
}

func (m *MockTextGenerator) ModelName() string {
	return "mock-model"
}

// MockRecorder collects recorded model outputs.
type MockRecorder struct {
	RecordFunc func(ctx context.Context, out *ModelOutput) error
	Outputs    []*ModelOutput
}

func (m *MockRecorder) RecordModelOutput(ctx context.Context, out *ModelOutput) error {
	m.Outputs = append(m.Outputs, out)
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, out)
	}
	return nil
}

func TestPromptBackend_ClassifyTransaction(t *testing.T) {
	gen := &MockTextGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"category":"Food & Dining","confidence_score":0.92}`, nil
		},
	}
	b := NewPromptBackend(gen)

	text, err := b.ClassifyTransaction(context.Background(), "Swiggy order", 450, domain.TransactionTypeExpense)
	if err != nil {
		t.Fatalf("ClassifyTransaction failed: %v", err)
	}
	if !strings.Contains(text, "Food & Dining") {
		t.Errorf("unexpected response text: %s", text)
	}

	if len(gen.Prompts) != 1 {
		t.Fatalf("expected exactly one remote call, got %d", len(gen.Prompts))
	}
	prompt := gen.Prompts[0]
	for _, want := range []string{"Swiggy order", "₹450.00", "expense", "Bills & Utilities", "Investment Returns"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPromptBackend_GenerateInsightsUsesCurrency(t *testing.T) {
	gen := &MockTextGenerator{}
	b := NewPromptBackend(gen, WithCurrencySymbol("$"))

	if _, err := b.GenerateInsights(context.Background(), "Financial Summary:\n- Total Income: $100.00"); err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}

	prompt := gen.Prompts[0]
	if !strings.Contains(prompt, "Total Income: $100.00") {
		t.Errorf("prompt should embed the context text, got: %s", prompt)
	}
	if !strings.Contains(prompt, "emergency fund of $X") {
		t.Errorf("prompt should use the configured currency, got: %s", prompt)
	}
}

func TestPromptBackend_RemoteErrorIsWrapped(t *testing.T) {
	gen := &MockTextGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.Join(ErrRemoteCall, errors.New("503 service unavailable"))
		},
	}
	b := NewPromptBackend(gen)

	_, err := b.GenerateInsights(context.Background(), "summary")
	if !errors.Is(err, ErrRemoteCall) {
		t.Errorf("expected ErrRemoteCall, got %v", err)
	}
	if len(gen.Prompts) != 1 {
		t.Errorf("expected no retries, got %d calls", len(gen.Prompts))
	}
}

func TestPromptBackend_Timeout(t *testing.T) {
	gen := &MockTextGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	b := NewPromptBackend(gen, WithTimeout(10*time.Millisecond))

	_, err := b.ClassifyTransaction(context.Background(), "x", 1, domain.TransactionTypeExpense)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestPromptBackend_RecordsOutputs(t *testing.T) {
	gen := &MockTextGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "categorization") {
				return `{"category":"Salary","confidence_score":0.8}`, nil
			}
			return "", errors.New("boom")
		},
	}
	rec := &MockRecorder{}
	b := NewPromptBackend(gen, WithRecorder(rec))

	_, _ = b.ClassifyTransaction(context.Background(), "March salary", 5000, domain.TransactionTypeIncome)
	_, _ = b.GenerateInsights(context.Background(), "summary")

	if len(rec.Outputs) != 2 {
		t.Fatalf("expected 2 recorded outputs, got %d", len(rec.Outputs))
	}
	first, second := rec.Outputs[0], rec.Outputs[1]
	if first.Task != TaskClassify || first.ModelName != "mock-model" || first.Error != "" {
		t.Errorf("unexpected first output: %+v", first)
	}
	if !strings.Contains(first.Response, "Salary") {
		t.Errorf("expected response to be recorded, got %q", first.Response)
	}
	if second.Task != TaskInsights || second.Error != "boom" {
		t.Errorf("unexpected second output: %+v", second)
	}
	if first.OutputID == "" || first.OutputID == second.OutputID {
		t.Error("expected unique output ids")
	}
}

func TestPromptBackend_RecorderFailureIsIgnored(t *testing.T) {
	gen := &MockTextGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"insights":["a"],"recommendations":["b"]}`, nil
		},
	}
	rec := &MockRecorder{
		RecordFunc: func(ctx context.Context, out *ModelOutput) error {
			return errors.New("bigquery unavailable")
		},
	}
	b := NewPromptBackend(gen, WithRecorder(rec))

	text, err := b.GenerateInsights(context.Background(), "summary")
	if err != nil {
		t.Fatalf("recorder failure must not fail the call: %v", err)
	}
	if text == "" {
		t.Error("expected model text")
	}
}

func TestNewTextGenerator_RulesOnly(t *testing.T) {
	tests := []struct {
		name string
		cfg  GeneratorConfig
	}{
		{"none provider", GeneratorConfig{Provider: ProviderNone, GeminiAPIKey: "k"}},
		{"gemini without key", GeneratorConfig{Provider: ProviderGemini}},
		{"default without key", GeneratorConfig{}},
		{"anthropic without key", GeneratorConfig{Provider: ProviderAnthropic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewTextGenerator(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gen != nil {
				t.Errorf("expected nil generator, got %T", gen)
			}
		})
	}
}

func TestNewTextGenerator_UnknownProvider(t *testing.T) {
	if _, err := NewTextGenerator(context.Background(), GeneratorConfig{Provider: "openai"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewTextGenerator_Anthropic(t *testing.T) {
	gen, err := NewTextGenerator(context.Background(), GeneratorConfig{
		Provider:        ProviderAnthropic,
		AnthropicAPIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.ModelName() != DefaultAnthropicModel {
		t.Errorf("model = %s, want %s", gen.ModelName(), DefaultAnthropicModel)
	}
}
