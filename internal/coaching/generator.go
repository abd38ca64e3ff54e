package coaching

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/finwise/internal/ai"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/logger"
)

// RemoteInsights is the model-side capability the Generator needs.
type RemoteInsights interface {
	GenerateInsights(ctx context.Context, contextText string) (string, error)
}

// InsightProducer turns an analysis and the user's goals into advice.
type InsightProducer interface {
	Generate(ctx context.Context, analysis domain.AnalysisResult, goals []domain.GoalRecord) domain.Advice
}

// Generator asks the remote model once and falls back to the RuleEngine on
// any failure. It never returns an error.
type Generator struct {
	remote RemoteInsights
	rules  *RuleEngine
}

// NewGenerator wires a Generator. A nil remote means rules only.
func NewGenerator(remote RemoteInsights, rules *RuleEngine) *Generator {
	if rules == nil {
		rules = NewRuleEngine(DefaultCurrencySymbol)
	}
	return &Generator{remote: remote, rules: rules}
}

type remoteAdvice struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// Generate returns model advice when usable, rule-based advice otherwise.
func (g *Generator) Generate(ctx context.Context, analysis domain.AnalysisResult, goals []domain.GoalRecord) domain.Advice {
	if g.remote == nil {
		return g.rules.Generate(analysis)
	}

	advice, err := g.generateRemote(ctx, analysis, goals)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("AI insight generation failed, using rule-based fallback")
		return g.rules.Generate(analysis)
	}
	return advice
}

func (g *Generator) generateRemote(ctx context.Context, analysis domain.AnalysisResult, goals []domain.GoalRecord) (domain.Advice, error) {
	text, err := g.remote.GenerateInsights(ctx, g.rules.BuildContext(analysis, goals))
	if err != nil {
		return domain.Advice{}, err
	}

	var parsed remoteAdvice
	if err := ai.DecodeJSON(text, &parsed); err != nil {
		return domain.Advice{}, err
	}

	insights := truncate(nonBlank(parsed.Insights), MaxItems)
	recommendations := truncate(nonBlank(parsed.Recommendations), MaxItems)
	if len(insights) == 0 && len(recommendations) == 0 {
		return domain.Advice{}, fmt.Errorf("%w: no insights or recommendations", ai.ErrMalformedResponse)
	}

	return domain.Advice{
		Insights:        insights,
		Recommendations: recommendations,
		Source:          domain.SourceAI,
	}, nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
