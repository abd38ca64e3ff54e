package ai

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finwise/internal/domain"
)

// ClassificationPrompt asks the model for one category from the fixed
// vocabulary as a JSON object.
func ClassificationPrompt(description string, amount float64, txType domain.TransactionType, currency string) string {
	var b strings.Builder
	b.WriteString("You are a financial transaction categorization expert. Analyze this transaction and categorize it.\n\n")
	b.WriteString("Transaction Details:\n")
	fmt.Fprintf(&b, "- Description: %s\n", description)
	fmt.Fprintf(&b, "- Amount: %s%.2f\n", currency, amount)
	fmt.Fprintf(&b, "- Type: %s\n\n", txType)
	fmt.Fprintf(&b, "Categories for expenses: %s\n", strings.Join(domain.ExpenseCategories, ", "))
	fmt.Fprintf(&b, "Categories for income: %s\n\n", strings.Join(domain.IncomeCategories, ", "))
	b.WriteString("Respond with ONLY a JSON object in this exact format:\n")
	b.WriteString("{\n")
	b.WriteString("    \"category\": \"category name\",\n")
	b.WriteString("    \"confidence_score\": 0.95,\n")
	b.WriteString("    \"reasoning\": \"brief explanation\"\n")
	b.WriteString("}\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	return b.String()
}

// CoachingPrompt wraps a financial summary with the coaching instructions
// and the expected JSON reply shape.
func CoachingPrompt(contextText, currency string) string {
	var b strings.Builder
	b.WriteString("You are a financial coach specialized in helping gig workers and informal sector workers manage irregular income.\n\n")
	b.WriteString(strings.TrimSpace(contextText))
	b.WriteString("\n\nProvide:\n")
	b.WriteString("1. 2-3 key insights about their financial behavior (be specific with numbers)\n")
	b.WriteString("2. 2-3 actionable recommendations tailored to gig workers with irregular income\n\n")
	b.WriteString("Respond with ONLY a JSON object in this format:\n")
	b.WriteString("{\n")
	b.WriteString("    \"insights\": [\n")
	b.WriteString("        \"Your income shows X% volatility, which is typical for gig work...\",\n")
	b.WriteString("        \"You're spending Y% of income on Z category...\"\n")
	b.WriteString("    ],\n")
	b.WriteString("    \"recommendations\": [\n")
	fmt.Fprintf(&b, "        \"Build an emergency fund of %sX to cover income gaps...\",\n", currency)
	b.WriteString("        \"Consider setting aside 20% of each gig payment...\"\n")
	b.WriteString("    ]\n")
	b.WriteString("}\n")
	return b.String()
}
