package services

import (
	"context"
	"fmt"
	"log"

	"insightengine/models"
)

const logicalFallacyTemplate = `You are an expert reviewer of long-form articles, detecting logical fallacies.

Analyze the article below for logical fallacies, including but not limited to:

1. overgeneralization: extending a conclusion from few cases to all cases
2. causal_reversal: confusing the direction of cause and effect
3. false_dilemma: reducing the problem to only two options
4. slippery_slope: assuming a small change leads to a chain of extreme consequences
5. ad_hominem: attacking the person instead of the argument
6. circular_reasoning: using the conclusion to prove the conclusion
7. strawman: refuting a distorted version of the opposing position
8. hasty_generalization: concluding from insufficient evidence
9. post_hoc: assuming that sequence implies causation

Article:
%s%s

Return the analysis as JSON:
{
    "score": <0.0-1.0, where 1.0 means no fallacies and lower means more or severer fallacies>,
    "fallacies": [
        {
            "type": "fallacy type code from the list above",
            "location": "where the fallacy occurs",
            "description": "detailed description of the fallacy",
            "severity": <0.0-1.0>
        }
    ],
    "fallacy_explanation": "overall summary of the fallacies found"
}

Provide ONLY the JSON output without additional text or markdown formatting.`

var logicalFallacySchema = Schema{
	// The score is not range-clamped here: an out-of-convention value (e.g. a
	// raw count) is detected in post-processing and replaced by the
	// severity-based normalization.
	{Name: "score", Kind: FieldScore, Default: -1.0},
	{Name: "fallacies", Kind: FieldList, Default: []any{}},
	{Name: "fallacy_explanation", Kind: FieldString, Default: ""},
}

// LogicalFallacyAgent detects reasoning flaws in the article. Score
// convention: 1.0 means no fallacies, decreasing with more and severer ones.
type LogicalFallacyAgent struct {
	invoker *Invoker
}

func NewLogicalFallacyAgent(invoker *Invoker) *LogicalFallacyAgent {
	return &LogicalFallacyAgent{invoker: invoker}
}

func (a *LogicalFallacyAgent) Dimension() models.Dimension {
	return models.DimensionLogicalFallacies
}

// Analyze runs fallacy detection. Unrecognized fallacy kinds are dropped with
// a log note; a score outside [0,1] (or missing) is replaced by the
// severity-based normalization, never propagated.
func (a *LogicalFallacyAgent) Analyze(ctx context.Context, articleText string) models.LogicalFallacyResult {
	text, truncated := truncateArticle(articleText)
	prompt := fmt.Sprintf(logicalFallacyTemplate, text, truncationNote(truncated))

	res := a.invoker.Invoke(ctx, prompt, logicalFallacySchema, a.fallback())

	fallacies := parseFallacies(res.Fields.List("fallacies"))
	score := res.Fields.Float("score")
	if score < 0 || score > 1 {
		score = normalizeFallacyScore(fallacies)
	}

	out := models.LogicalFallacyResult{
		DimensionScore: models.DimensionScore{
			Score:       score,
			Explanation: res.Fields.String("fallacy_explanation"),
			Degraded:    res.Degraded,
		},
		Fallacies: fallacies,
	}
	if res.Degraded {
		out.Explanation = degradedExplanation(a.Dimension())
		out.Fallacies = []models.LogicalFallacy{}
		out.Score = fallbackScore
	}
	return out
}

func (a *LogicalFallacyAgent) Run(ctx context.Context, articleText string, report *models.EvaluationReport) models.DimensionScore {
	result := a.Analyze(ctx, articleText)
	report.LogicalFallacies = result
	return result.DimensionScore
}

func (a *LogicalFallacyAgent) fallback() ParsedResult {
	return ParsedResult{
		"score":               fallbackScore,
		"fallacies":           []any{},
		"fallacy_explanation": "",
	}
}

// normalizeFallacyScore converts detected fallacies into the documented score
// convention: max(0, 1 - sum(severity)/cap).
func normalizeFallacyScore(fallacies []models.LogicalFallacy) float64 {
	if len(fallacies) == 0 {
		return 1.0
	}
	var total float64
	for _, f := range fallacies {
		total += f.Severity
	}
	score := 1.0 - total/fallacySeverityCap
	if score < 0 {
		return 0
	}
	return score
}

// parseFallacies maps raw fallacy entries onto the closed enumeration.
// Entries with kinds outside the enumeration are dropped, not failed on: the
// model's vocabulary cannot be fully controlled.
func parseFallacies(raw []any) []models.LogicalFallacy {
	fallacies := make([]models.LogicalFallacy, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		kind, ok := models.ParseFallacyType(stringField(m, "type"))
		if !ok {
			log.Printf("fallacy agent: dropping unrecognized fallacy kind %q", stringField(m, "type"))
			continue
		}
		fallacies = append(fallacies, models.LogicalFallacy{
			Type:        kind,
			Location:    stringField(m, "location"),
			Description: stringField(m, "description"),
			Severity:    models.ClampScore(floatField(m, "severity")),
		})
	}
	return fallacies
}
