// Package ai talks to hosted text-generation models for transaction
// classification and coaching insights.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/logger"
)

// Backend is the remote capability used by the classifier and the insight
// generator. Each call is one-shot; the returned text is expected to hold a
// single, possibly fenced, JSON object.
type Backend interface {
	ClassifyTransaction(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error)
	GenerateInsights(ctx context.Context, contextText string) (string, error)
}

// Task names recorded with model outputs.
const (
	TaskClassify = "classify_transaction"
	TaskInsights = "generate_insights"
)

// ModelOutput is one raw model exchange kept for audit.
type ModelOutput struct {
	OutputID  string
	Task      string
	ModelName string
	Prompt    string
	Response  string
	Error     string
	CreatedAt time.Time
}

// OutputRecorder persists raw model exchanges.
type OutputRecorder interface {
	RecordModelOutput(ctx context.Context, out *ModelOutput) error
}

// PromptBackend implements Backend by building prompts and sending them to
// a TextGenerator.
type PromptBackend struct {
	gen      TextGenerator
	recorder OutputRecorder
	timeout  time.Duration
	currency string
}

// Option configures a PromptBackend.
type Option func(*PromptBackend)

// WithTimeout bounds each remote attempt.
func WithTimeout(d time.Duration) Option {
	return func(b *PromptBackend) { b.timeout = d }
}

// WithRecorder stores every model exchange through r.
func WithRecorder(r OutputRecorder) Option {
	return func(b *PromptBackend) { b.recorder = r }
}

// WithCurrencySymbol sets the symbol used when quoting amounts in prompts.
func WithCurrencySymbol(symbol string) Option {
	return func(b *PromptBackend) { b.currency = symbol }
}

// NewPromptBackend creates a Backend over gen.
func NewPromptBackend(gen TextGenerator, opts ...Option) *PromptBackend {
	b := &PromptBackend{gen: gen, currency: "₹"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ClassifyTransaction asks the model to categorize one transaction.
func (b *PromptBackend) ClassifyTransaction(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error) {
	prompt := ClassificationPrompt(description, amount, txType, b.currency)
	return b.call(ctx, TaskClassify, prompt)
}

// GenerateInsights asks the model for insights on a financial summary.
func (b *PromptBackend) GenerateInsights(ctx context.Context, contextText string) (string, error) {
	prompt := CoachingPrompt(contextText, b.currency)
	return b.call(ctx, TaskInsights, prompt)
}

func (b *PromptBackend) call(ctx context.Context, task, prompt string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	text, err := b.gen.GenerateText(ctx, prompt)
	b.record(ctx, task, prompt, text, err)
	if err != nil {
		return "", fmt.Errorf("%s: %w", task, err)
	}
	return text, nil
}

func (b *PromptBackend) record(ctx context.Context, task, prompt, text string, callErr error) {
	if b.recorder == nil {
		return
	}

	out := &ModelOutput{
		OutputID:  uuid.NewString(),
		Task:      task,
		ModelName: b.gen.ModelName(),
		Prompt:    prompt,
		Response:  text,
		CreatedAt: time.Now().UTC(),
	}
	if callErr != nil {
		out.Error = callErr.Error()
	}

	// Use a detached context so a timed-out call still gets recorded.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := b.recorder.RecordModelOutput(recCtx, out); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("task", task).Msg("Failed to record model output")
	}
}
