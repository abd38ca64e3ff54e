package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// CategoryTotal is one (category, total) pair.
type CategoryTotal struct {
	Category string
	Total    float64
}

// MarshalJSON encodes the pair as a two-element array, e.g. ["Shopping", 120].
func (c CategoryTotal) MarshalJSON() ([]byte, error) {
	return marshalPlain([]interface{}{c.Category, c.Total})
}

// marshalPlain encodes v without HTML escaping so names such as
// "Bills & Utilities" stay readable.
func marshalPlain(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// CategoryTotals is a category -> total mapping that remembers the order in
// which categories were first seen.
type CategoryTotals []CategoryTotal

// Add accumulates amount into category, appending it if new.
func (c *CategoryTotals) Add(category string, amount float64) {
	for i := range *c {
		if (*c)[i].Category == category {
			(*c)[i].Total += amount
			return
		}
	}
	*c = append(*c, CategoryTotal{Category: category, Total: amount})
}

// Get returns the total for category.
func (c CategoryTotals) Get(category string) (float64, bool) {
	for _, ct := range c {
		if ct.Category == category {
			return ct.Total, true
		}
	}
	return 0, false
}

// MarshalJSON encodes the mapping as a JSON object in first-seen key order.
func (c CategoryTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ct := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(ct.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ct.Total)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IncomeAnalysis summarizes income transactions.
type IncomeAnalysis struct {
	Total             float64        `json:"total"`
	ByCategory        CategoryTotals `json:"by_category"`
	Count             int            `json:"count"`
	VolatilityPercent float64        `json:"volatility_percent"`
}

// ExpenseAnalysis summarizes expense transactions.
type ExpenseAnalysis struct {
	Total         float64         `json:"total"`
	ByCategory    CategoryTotals  `json:"by_category"`
	Count         int             `json:"count"`
	TopCategories []CategoryTotal `json:"top_categories"`
}

// AnalysisResult is the statistical summary of a set of transactions.
// SavingsRatePercent is unrounded.
type AnalysisResult struct {
	IncomeAnalysis     IncomeAnalysis  `json:"income_analysis"`
	ExpenseAnalysis    ExpenseAnalysis `json:"expense_analysis"`
	NetSavings         float64         `json:"net_savings"`
	SavingsRatePercent float64         `json:"savings_rate_percent"`
}

// Advice is the insight/recommendation pair produced for an analysis.
type Advice struct {
	Insights        []string             `json:"insights"`
	Recommendations []string             `json:"recommendations"`
	Source          ClassificationSource `json:"source"`
}

// CoachingResult is the payload returned to callers asking for coaching.
type CoachingResult struct {
	Insights        []string             `json:"insights"`
	Recommendations []string             `json:"recommendations"`
	IncomeAnalysis  IncomeAnalysis       `json:"income_analysis"`
	ExpenseAnalysis ExpenseAnalysis      `json:"expense_analysis"`
	Source          ClassificationSource `json:"source"`
	GeneratedAt     time.Time            `json:"generated_at"`
}
