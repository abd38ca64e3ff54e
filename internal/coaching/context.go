package coaching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/finwise/internal/domain"
)

const goalDateLayout = "2006-01-02"

// BuildContext renders every numeric field of analysis, plus the first
// goal's target when goals is non-empty, as plain text for the model.
func (e *RuleEngine) BuildContext(analysis domain.AnalysisResult, goals []domain.GoalRecord) string {
	income := analysis.IncomeAnalysis
	expense := analysis.ExpenseAnalysis

	var b strings.Builder
	b.WriteString("Financial Summary:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", e.FormatAmount(income.Total))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", e.FormatAmount(expense.Total))
	fmt.Fprintf(&b, "- Net Savings: %s\n", e.FormatAmount(analysis.NetSavings))
	fmt.Fprintf(&b, "- Savings Rate: %.1f%%\n", analysis.SavingsRatePercent)
	fmt.Fprintf(&b, "- Income Volatility: %.1f%%\n", income.VolatilityPercent)
	fmt.Fprintf(&b, "- Number of Income Transactions: %d\n", income.Count)
	fmt.Fprintf(&b, "- Number of Expense Transactions: %d\n", expense.Count)

	b.WriteString("\nIncome by Category:\n")
	b.WriteString(indentJSON(income.ByCategory))

	b.WriteString("\n\nExpenses by Category:\n")
	b.WriteString(indentJSON(expense.ByCategory))

	b.WriteString("\n\nTop Expense Categories:\n")
	b.WriteString(indentJSON(domain.CategoryTotals(expense.TopCategories)))
	b.WriteString("\n")

	if len(goals) > 0 {
		goal := goals[0]
		fmt.Fprintf(&b, "\nUser Goal: Save %s by %s", e.FormatAmount(goal.TargetAmount), goal.TargetDate.Format(goalDateLayout))
		if goal.Title != "" {
			fmt.Fprintf(&b, " (%s)", goal.Title)
		}
		if goal.CurrentAmount > 0 {
			fmt.Fprintf(&b, ", %s saved so far", e.FormatAmount(goal.CurrentAmount))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func indentJSON(totals domain.CategoryTotals) string {
	raw, err := totals.MarshalJSON()
	if err != nil {
		return "{}"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
