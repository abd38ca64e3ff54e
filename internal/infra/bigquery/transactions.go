package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finwise/internal/domain"
)

type TransactionRow struct {
	TransactionID string    `bigquery:"transaction_id"` // REQUIRED
	UserID        string    `bigquery:"user_id"`        // REQUIRED
	TransactionTS time.Time `bigquery:"transaction_ts"` // REQUIRED

	Amount      *big.Rat `bigquery:"amount"`      // REQUIRED NUMERIC
	Type        string   `bigquery:"type"`        // REQUIRED: income | expense
	Description string   `bigquery:"description"` // REQUIRED

	CategoryName         bigquery.NullString  `bigquery:"category_name"`         // NULLABLE
	ConfidenceScore      bigquery.NullFloat64 `bigquery:"confidence_score"`      // NULLABLE
	ClassificationSource bigquery.NullString  `bigquery:"classification_source"` // NULLABLE: ai | rules

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

func newTransactionRow(t *domain.TransactionRecord) *TransactionRow {
	row := &TransactionRow{
		TransactionID: t.ID,
		UserID:        t.UserID,
		TransactionTS: t.Date.UTC(),
		Amount:        new(big.Rat).SetFloat64(t.Amount),
		Type:          string(t.Type),
		Description:   t.Description,
		CreatedTS:     t.CreatedAt.UTC(),
	}
	if t.Category != nil {
		row.CategoryName = bigquery.NullString{StringVal: *t.Category, Valid: true}
	}
	if t.ConfidenceScore != nil {
		row.ConfidenceScore = bigquery.NullFloat64{Float64: *t.ConfidenceScore, Valid: true}
	}
	if t.ClassificationSource != "" {
		row.ClassificationSource = bigquery.NullString{StringVal: string(t.ClassificationSource), Valid: true}
	}
	return row
}

func (r *TransactionRow) toDomain() domain.TransactionRecord {
	t := domain.TransactionRecord{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		Date:        r.TransactionTS.UTC(),
		Type:        domain.TransactionType(r.Type),
		Description: r.Description,
		CreatedAt:   r.CreatedTS.UTC(),
	}
	if r.Amount != nil {
		t.Amount, _ = r.Amount.Float64()
	}
	if r.CategoryName.Valid {
		c := r.CategoryName.StringVal
		t.Category = &c
	}
	if r.ConfidenceScore.Valid {
		f := r.ConfidenceScore.Float64
		t.ConfidenceScore = &f
	}
	if r.ClassificationSource.Valid {
		t.ClassificationSource = domain.ClassificationSource(r.ClassificationSource.StringVal)
	}
	return t
}
