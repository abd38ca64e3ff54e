package classify

import (
	"context"
	"fmt"

	"github.com/dvloznov/finwise/internal/ai"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/logger"
)

// RemoteClassifier is the model-side capability the Classifier needs.
type RemoteClassifier interface {
	ClassifyTransaction(ctx context.Context, description string, amount float64, txType domain.TransactionType) (string, error)
}

// TextClassifier assigns a category to one transaction.
type TextClassifier interface {
	Classify(ctx context.Context, description string, amount float64, txType domain.TransactionType) Result
}

// Classifier tries the remote model once and falls back to keyword rules on
// any failure. It never returns an error.
type Classifier struct {
	remote RemoteClassifier
	rules  *Rules
}

// NewClassifier wires a Classifier. A nil remote means rules only; a nil
// rules uses the built-in table.
func NewClassifier(remote RemoteClassifier, rules *Rules) *Classifier {
	if rules == nil {
		rules = NewRules()
	}
	return &Classifier{remote: remote, rules: rules}
}

type remoteClassification struct {
	Category        *string  `json:"category"`
	ConfidenceScore *float64 `json:"confidence_score"`
	Reasoning       string   `json:"reasoning"`
}

// Classify returns the model's category when the reply is usable, the rule
// based category otherwise.
func (c *Classifier) Classify(ctx context.Context, description string, amount float64, txType domain.TransactionType) Result {
	if c.remote == nil {
		return c.rules.Classify(description, txType)
	}

	log := logger.FromContext(ctx)

	res, err := c.classifyRemote(ctx, description, amount, txType)
	if err != nil {
		log.Warn().
			Err(err).
			Str("description", description).
			Msg("AI classification failed, using rule-based fallback")
		return c.rules.Classify(description, txType)
	}
	return res
}

func (c *Classifier) classifyRemote(ctx context.Context, description string, amount float64, txType domain.TransactionType) (Result, error) {
	text, err := c.remote.ClassifyTransaction(ctx, description, amount, txType)
	if err != nil {
		return Result{}, err
	}

	var parsed remoteClassification
	if err := ai.DecodeJSON(text, &parsed); err != nil {
		return Result{}, err
	}
	if parsed.Category == nil || *parsed.Category == "" {
		return Result{}, fmt.Errorf("%w: missing category", ai.ErrMalformedResponse)
	}
	if parsed.ConfidenceScore == nil {
		return Result{}, fmt.Errorf("%w: missing confidence_score", ai.ErrMalformedResponse)
	}
	if score := *parsed.ConfidenceScore; score < 0 || score > 1 {
		return Result{}, fmt.Errorf("%w: confidence_score %v out of range", ai.ErrMalformedResponse, score)
	}

	category, known := domain.CanonicalCategory(*parsed.Category)
	if !known {
		log := logger.FromContext(ctx)
		log.Debug().Str("category", category).Msg("Model returned a category outside the fixed vocabulary")
	}

	return Result{
		Category:        category,
		ConfidenceScore: *parsed.ConfidenceScore,
		Source:          domain.SourceAI,
	}, nil
}
