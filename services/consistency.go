package services

import (
	"context"
	"fmt"

	"insightengine/models"
)

const consistencyTemplate = `You are an expert reviewer of long-form articles, checking internal consistency.

Analyze the article below for internal contradictions or inconsistencies, including:

1. Contradictory statements: do earlier and later passages contradict each other?
2. Contradictory data: are cited figures and facts consistent throughout?
3. Contradictory stance: does the article's position stay consistent?
4. Logical contradictions: is the reasoning self-consistent?
5. Conclusion-evidence agreement: does the conclusion match the evidence presented?

Article:
%s%s

Return the analysis as JSON:
{
    "score": <0.0-1.0, where 1.0 means fully consistent and 0.0 means severely contradictory>,
    "contradictions": [
        "description of contradiction 1",
        "description of contradiction 2"
    ],
    "consistency_explanation": "detailed explanation of the consistency check with concrete examples"
}

Provide ONLY the JSON output without additional text or markdown formatting.`

var consistencySchema = Schema{
	{Name: "score", Kind: FieldScore, Required: true, HasRange: true, Min: 0, Max: 1},
	{Name: "contradictions", Kind: FieldList, Default: []any{}},
	{Name: "consistency_explanation", Kind: FieldString, Default: ""},
}

// ConsistencyAgent checks the article for internal contradictions.
// Contradictions are kept as opaque description strings.
type ConsistencyAgent struct {
	invoker *Invoker
}

func NewConsistencyAgent(invoker *Invoker) *ConsistencyAgent {
	return &ConsistencyAgent{invoker: invoker}
}

func (a *ConsistencyAgent) Dimension() models.Dimension {
	return models.DimensionConsistency
}

func (a *ConsistencyAgent) Analyze(ctx context.Context, articleText string) models.ConsistencyResult {
	text, truncated := truncateArticle(articleText)
	prompt := fmt.Sprintf(consistencyTemplate, text, truncationNote(truncated))

	res := a.invoker.Invoke(ctx, prompt, consistencySchema, a.fallback())

	contradictions := make([]string, 0)
	for _, entry := range res.Fields.List("contradictions") {
		if s, ok := entry.(string); ok && s != "" {
			contradictions = append(contradictions, s)
		}
	}

	out := models.ConsistencyResult{
		DimensionScore: models.DimensionScore{
			Score:       models.ClampScore(res.Fields.Float("score")),
			Explanation: res.Fields.String("consistency_explanation"),
			Degraded:    res.Degraded,
		},
		Contradictions: contradictions,
	}
	if res.Degraded {
		out.Explanation = degradedExplanation(a.Dimension())
	}
	return out
}

func (a *ConsistencyAgent) Run(ctx context.Context, articleText string, report *models.EvaluationReport) models.DimensionScore {
	result := a.Analyze(ctx, articleText)
	report.Consistency = result
	return result.DimensionScore
}

func (a *ConsistencyAgent) fallback() ParsedResult {
	return ParsedResult{
		"score":                   fallbackScore,
		"contradictions":          []any{},
		"consistency_explanation": "",
	}
}
