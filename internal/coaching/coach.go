package coaching

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/finwise/internal/analysis"
	"github.com/dvloznov/finwise/internal/domain"
)

// ErrNoTransactions is returned when coaching is requested without any
// transactions to analyse.
var ErrNoTransactions = errors.New("no transactions found, add some transactions first")

// Coach runs aggregation and insight generation for one request.
type Coach struct {
	producer InsightProducer
	now      func() time.Time
}

// NewCoach creates a Coach backed by producer.
func NewCoach(producer InsightProducer) *Coach {
	return &Coach{producer: producer, now: time.Now}
}

// Coach aggregates txs and asks for advice. Goals are narrowed to active ones,
// most recent first. Only an empty txs is an error; model failures are
// absorbed by the producer's fallback.
func (c *Coach) Coach(ctx context.Context, txs []domain.TransactionRecord, goals []domain.GoalRecord) (*domain.CoachingResult, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	result := analysis.Aggregate(txs)
	advice := c.producer.Generate(ctx, result, domain.ActiveGoals(goals))

	return &domain.CoachingResult{
		Insights:        advice.Insights,
		Recommendations: advice.Recommendations,
		IncomeAnalysis:  result.IncomeAnalysis,
		ExpenseAnalysis: result.ExpenseAnalysis,
		Source:          advice.Source,
		GeneratedAt:     c.now().UTC(),
	}, nil
}
