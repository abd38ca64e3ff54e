package domain

import (
	"strings"
	"time"
)

// DefaultUserID is the single user every record belongs to.
const DefaultUserID = "default_user"

// TransactionType is the direction of money movement.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ParseTransactionType accepts "income"/"expense" in any case.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionTypeIncome:
		return TransactionTypeIncome, true
	case TransactionTypeExpense:
		return TransactionTypeExpense, true
	default:
		return "", false
	}
}

// IsIncome reports whether t is the income branch. Anything else,
// including an empty type, is treated as expense.
func (t TransactionType) IsIncome() bool {
	return t == TransactionTypeIncome
}

// ClassificationSource tells which strategy assigned a category.
type ClassificationSource string

const (
	SourceAI    ClassificationSource = "ai"
	SourceRules ClassificationSource = "rules"
)

// UncategorizedCategory is used when a transaction carries no category.
const UncategorizedCategory = "Uncategorized"

// TransactionRecord is one user transaction. Category, ConfidenceScore and
// ClassificationSource are assigned once, before the record is stored.
type TransactionRecord struct {
	ID                   string               `json:"_id"`
	UserID               string               `json:"user_id"`
	Date                 time.Time            `json:"date"`
	Amount               float64              `json:"amount"`
	Type                 TransactionType      `json:"type"`
	Description          string               `json:"description"`
	Category             *string              `json:"category"`
	ConfidenceScore      *float64             `json:"confidence_score"`
	ClassificationSource ClassificationSource `json:"classification_source,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
}

// CategoryOrDefault returns the assigned category or "Uncategorized".
func (t TransactionRecord) CategoryOrDefault() string {
	if t.Category == nil || *t.Category == "" {
		return UncategorizedCategory
	}
	return *t.Category
}

// Classification is the outcome of categorizing one transaction.
type Classification struct {
	Category        string               `json:"category"`
	ConfidenceScore float64              `json:"confidence_score"`
	Source          ClassificationSource `json:"source"`
}

// Apply sets the category fields on the record.
func (c Classification) Apply(t *TransactionRecord) {
	category := c.Category
	score := c.ConfidenceScore
	t.Category = &category
	t.ConfidenceScore = &score
	t.ClassificationSource = c.Source
}
