package domain

import "strings"

// ExpenseCategories is the fixed expense vocabulary offered to the model.
var ExpenseCategories = []string{
	"Food & Dining",
	"Transportation",
	"Bills & Utilities",
	"Shopping",
	"Entertainment",
	"Healthcare",
	"Education",
	"Other Expense",
}

// IncomeCategories is the fixed income vocabulary offered to the model.
var IncomeCategories = []string{
	"Freelance/Gig Income",
	"Salary",
	"Business Income",
	"Investment Returns",
	"Other Income",
}

// CanonicalCategory returns the vocabulary spelling of name when it matches
// a known category case-insensitively.
func CanonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, list := range [][]string{ExpenseCategories, IncomeCategories} {
		for _, c := range list {
			if strings.EqualFold(c, name) {
				return c, true
			}
		}
	}
	return name, false
}
