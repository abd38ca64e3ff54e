// Package analysis turns a list of transactions into income/expense statistics.
package analysis

import (
	"math"
	"sort"

	"github.com/dvloznov/finwise/internal/domain"
)

// TopCategoryLimit bounds ExpenseAnalysis.TopCategories.
const TopCategoryLimit = 3

// Aggregate builds the statistical summary for txs. It is deterministic and
// never fails: an empty input yields zero totals and empty category maps.
func Aggregate(txs []domain.TransactionRecord) domain.AnalysisResult {
	var (
		income  domain.IncomeAnalysis
		expense domain.ExpenseAnalysis
	)
	income.ByCategory = domain.CategoryTotals{}
	expense.ByCategory = domain.CategoryTotals{}

	incomeAmounts := make([]float64, 0, len(txs))

	for _, txn := range txs {
		amount := txn.Amount
		category := txn.CategoryOrDefault()

		if txn.Type.IsIncome() {
			income.Total += amount
			income.ByCategory.Add(category, amount)
			income.Count++
			incomeAmounts = append(incomeAmounts, amount)
			continue
		}

		expense.Total += amount
		expense.ByCategory.Add(category, amount)
		expense.Count++
	}

	income.VolatilityPercent = Volatility(incomeAmounts)
	expense.TopCategories = TopCategories(expense.ByCategory, TopCategoryLimit)

	net := income.Total - expense.Total
	return domain.AnalysisResult{
		IncomeAnalysis:     income,
		ExpenseAnalysis:    expense,
		NetSavings:         net,
		SavingsRatePercent: SavingsRate(income.Total, expense.Total),
	}
}

// Volatility returns the coefficient of variation (population standard
// deviation over mean) of amounts as a percentage rounded to 2 decimals.
// It is 0 for fewer than two amounts or a non-positive mean.
func Volatility(amounts []float64) float64 {
	if len(amounts) < 2 {
		return 0
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	n := float64(len(amounts))
	mean := sum / n
	if mean <= 0 {
		return 0
	}

	var sq float64
	for _, a := range amounts {
		d := a - mean
		sq += d * d
	}
	stdDev := math.Sqrt(sq / n)

	return Round(stdDev/mean*100, 2)
}

// SavingsRate is (income - expense) / income * 100, or 0 without income.
func SavingsRate(incomeTotal, expenseTotal float64) float64 {
	if incomeTotal <= 0 {
		return 0
	}
	return (incomeTotal - expenseTotal) / incomeTotal * 100
}

// TopCategories returns up to limit entries of totals sorted by total
// descending. Equal totals keep their first-seen order.
func TopCategories(totals domain.CategoryTotals, limit int) []domain.CategoryTotal {
	sorted := make([]domain.CategoryTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
