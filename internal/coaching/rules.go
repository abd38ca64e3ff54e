// Package coaching turns transaction statistics into insights and
// recommendations for the user.
package coaching

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dvloznov/finwise/internal/domain"
)

// MaxItems bounds both the insight and the recommendation lists.
const MaxItems = 3

// DefaultCurrencySymbol prefixes amounts when none is configured.
const DefaultCurrencySymbol = "₹"

// Savings-rate and volatility thresholds, in percent.
const (
	healthySavingsRate  = 20.0
	volatileIncomeLimit = 30.0
)

const (
	emergencyFundAdvice = "Build an emergency fund equal to 2-3 months of expenses to handle income gaps."
	budgetSplitAdvice   = "Try the 50-30-20 rule: 50% needs, 30% wants, 20% savings."
)

// RuleEngine produces deterministic advice from an analysis.
type RuleEngine struct {
	currency string
	printer  *message.Printer
}

// NewRuleEngine creates a RuleEngine quoting amounts with currency.
func NewRuleEngine(currency string) *RuleEngine {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return &RuleEngine{
		currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

// FormatAmount renders v with two decimals, thousands grouping and the
// currency symbol, e.g. ₹1,250.00.
func (e *RuleEngine) FormatAmount(v float64) string {
	return e.currency + e.printer.Sprintf("%.2f", v)
}

// Generate applies the fixed rule list in order. Each list holds at most
// MaxItems entries.
func (e *RuleEngine) Generate(analysis domain.AnalysisResult) domain.Advice {
	var insights, recommendations []string

	rate := analysis.SavingsRatePercent
	switch {
	case rate > healthySavingsRate:
		insights = append(insights, fmt.Sprintf("Great job! You're saving %.1f%% of your income.", rate))
	case rate > 0:
		insights = append(insights, fmt.Sprintf("You're saving %.1f%% of your income. Let's work on increasing this!", rate))
	default:
		insights = append(insights, "Your expenses exceed income by "+e.FormatAmount(math.Abs(analysis.NetSavings))+". Let's create a plan.")
	}

	if v := analysis.IncomeAnalysis.VolatilityPercent; v > volatileIncomeLimit {
		insights = append(insights, fmt.Sprintf("Your income varies by %.0f%%, typical for gig work.", v))
		recommendations = append(recommendations, emergencyFundAdvice)
	}

	if top := analysis.ExpenseAnalysis.TopCategories; len(top) > 0 {
		insights = append(insights, "Your highest expense is "+top[0].Category+" at "+e.FormatAmount(top[0].Total)+".")
		recommendations = append(recommendations, "Review your "+top[0].Category+" spending for potential savings opportunities.")
	}

	if rate < healthySavingsRate {
		recommendations = append(recommendations, budgetSplitAdvice)
	}

	return domain.Advice{
		Insights:        truncate(insights, MaxItems),
		Recommendations: truncate(recommendations, MaxItems),
		Source:          domain.SourceRules,
	}
}

func truncate(items []string, n int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
