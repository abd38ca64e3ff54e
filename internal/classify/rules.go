// Package classify assigns a spending or income category to a transaction.
package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/finwise/internal/domain"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Result is the category assigned to one transaction.
type Result = domain.Classification

// KeywordRule maps any of Keywords to Category.
type KeywordRule struct {
	Category   string   `yaml:"category"`
	Confidence float64  `yaml:"confidence"`
	Keywords   []string `yaml:"keywords"`
}

// Fallback is used when no keyword rule matches.
type Fallback struct {
	Category   string  `yaml:"category"`
	Confidence float64 `yaml:"confidence"`
}

// RuleSet is the ordered rule list for one transaction type.
type RuleSet struct {
	Rules   []KeywordRule `yaml:"rules"`
	Default Fallback      `yaml:"default"`
}

// RuleTable holds the income and expense rule sets.
type RuleTable struct {
	Income  RuleSet `yaml:"income"`
	Expense RuleSet `yaml:"expense"`
}

// Rules is the deterministic keyword classifier. It is pure and safe for
// concurrent use.
type Rules struct {
	table RuleTable
}

// NewRules returns a classifier backed by the built-in rule table.
func NewRules() *Rules {
	r, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("classify: built-in rules: %v", err))
	}
	return r
}

// LoadRules reads a rule table from a YAML file. An empty path returns the
// built-in table.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return NewRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadRules: reading %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (*Rules, error) {
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("ParseRules: decoding yaml: %w", err)
	}
	if err := validateRuleSet("income", &table.Income); err != nil {
		return nil, err
	}
	if err := validateRuleSet("expense", &table.Expense); err != nil {
		return nil, err
	}
	return &Rules{table: table}, nil
}

func validateRuleSet(name string, rs *RuleSet) error {
	if rs.Default.Category == "" {
		return fmt.Errorf("ParseRules: %s: default category is required", name)
	}
	if !validConfidence(rs.Default.Confidence) {
		return fmt.Errorf("ParseRules: %s: default confidence %v out of range", name, rs.Default.Confidence)
	}
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.Category == "" {
			return fmt.Errorf("ParseRules: %s rule %d: category is required", name, i+1)
		}
		if !validConfidence(rule.Confidence) {
			return fmt.Errorf("ParseRules: %s rule %d: confidence %v out of range", name, i+1, rule.Confidence)
		}
		for j, kw := range rule.Keywords {
			rule.Keywords[j] = strings.ToLower(kw)
		}
	}
	return nil
}

func validConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

// Classify picks a category from keywords in description. Anything that is
// not income uses the expense table.
func (r *Rules) Classify(description string, txType domain.TransactionType) Result {
	rs := &r.table.Expense
	if txType.IsIncome() {
		rs = &r.table.Income
	}

	desc := strings.ToLower(description)
	for _, rule := range rs.Rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(desc, kw) {
				return Result{Category: rule.Category, ConfidenceScore: rule.Confidence, Source: domain.SourceRules}
			}
		}
	}
	return Result{Category: rs.Default.Category, ConfidenceScore: rs.Default.Confidence, Source: domain.SourceRules}
}
