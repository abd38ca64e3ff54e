package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finwise/internal/domain"
)

type GoalRow struct {
	GoalID        string     `bigquery:"goal_id"`        // REQUIRED
	UserID        string     `bigquery:"user_id"`        // REQUIRED
	Title         string     `bigquery:"title"`          // REQUIRED
	TargetAmount  *big.Rat   `bigquery:"target_amount"`  // REQUIRED NUMERIC
	TargetDate    civil.Date `bigquery:"target_date"`    // REQUIRED
	CurrentAmount *big.Rat   `bigquery:"current_amount"` // REQUIRED NUMERIC
	Status        string     `bigquery:"status"`         // REQUIRED: active | completed | abandoned
	CreatedTS     time.Time  `bigquery:"created_ts"`     // REQUIRED
}

func newGoalRow(g *domain.GoalRecord) *GoalRow {
	return &GoalRow{
		GoalID:        g.ID,
		UserID:        g.UserID,
		Title:         g.Title,
		TargetAmount:  new(big.Rat).SetFloat64(g.TargetAmount),
		TargetDate:    civil.DateOf(g.TargetDate.UTC()),
		CurrentAmount: new(big.Rat).SetFloat64(g.CurrentAmount),
		Status:        string(g.Status),
		CreatedTS:     g.CreatedAt.UTC(),
	}
}

func (r *GoalRow) toDomain() domain.GoalRecord {
	g := domain.GoalRecord{
		ID:         r.GoalID,
		UserID:     r.UserID,
		Title:      r.Title,
		TargetDate: r.TargetDate.In(time.UTC),
		Status:     domain.GoalStatus(r.Status),
		CreatedAt:  r.CreatedTS.UTC(),
	}
	if r.TargetAmount != nil {
		g.TargetAmount, _ = r.TargetAmount.Float64()
	}
	if r.CurrentAmount != nil {
		g.CurrentAmount, _ = r.CurrentAmount.Float64()
	}
	return g
}
