package services

import (
	"context"
	"fmt"

	"insightengine/models"
)

const reasoningDepthTemplate = `You are an expert reviewer of long-form articles, assessing reasoning depth.

Analyze the reasoning depth of the article below. Consider:

1. Multi-angle analysis: does the article examine the issue from several angles (market, policy, technology, competition)?
2. Layered analysis: does the analysis progress in levels (surface phenomenon -> underlying causes -> potential implications)?
3. Causal analysis: does it trace clear cause-and-effect relationships?
4. Comparative analysis: does it draw meaningful comparisons (historical, peer)?
5. Depth of inference: does it reason through implications rather than merely listing facts?

Article:
%s%s

Return the analysis as JSON:
{
    "score": <0.0-1.0>,
    "has_causal_analysis": true/false,
    "has_comparative_analysis": true/false,
    "analysis_levels": <number of analysis levels detected, 1-5>,
    "depth_explanation": "detailed explanation of the depth assessment with concrete examples"
}

Provide ONLY the JSON output without additional text or markdown formatting.`

var reasoningDepthSchema = Schema{
	{Name: "score", Kind: FieldScore, Required: true, HasRange: true, Min: 0, Max: 1},
	{Name: "has_causal_analysis", Kind: FieldBool, Default: false},
	{Name: "has_comparative_analysis", Kind: FieldBool, Default: false},
	{Name: "analysis_levels", Kind: FieldInt, HasRange: true, Min: 1, Max: 5, Default: 1},
	{Name: "depth_explanation", Kind: FieldString, Default: ""},
}

// ReasoningDepthAgent assesses how thoroughly the article reasons about its
// subject.
type ReasoningDepthAgent struct {
	invoker *Invoker
}

func NewReasoningDepthAgent(invoker *Invoker) *ReasoningDepthAgent {
	return &ReasoningDepthAgent{invoker: invoker}
}

func (a *ReasoningDepthAgent) Dimension() models.Dimension {
	return models.DimensionReasoningDepth
}

// Analyze evaluates reasoning depth, returning a fallback result when the
// inference service is unavailable.
func (a *ReasoningDepthAgent) Analyze(ctx context.Context, articleText string) models.ReasoningDepthResult {
	text, truncated := truncateArticle(articleText)
	prompt := fmt.Sprintf(reasoningDepthTemplate, text, truncationNote(truncated))

	res := a.invoker.Invoke(ctx, prompt, reasoningDepthSchema, a.fallback())

	out := models.ReasoningDepthResult{
		DimensionScore: models.DimensionScore{
			Score:       models.ClampScore(res.Fields.Float("score")),
			Explanation: res.Fields.String("depth_explanation"),
			Degraded:    res.Degraded,
		},
		HasCausalAnalysis:      res.Fields.Bool("has_causal_analysis"),
		HasComparativeAnalysis: res.Fields.Bool("has_comparative_analysis"),
		AnalysisLevels:         clampInt(res.Fields.Int("analysis_levels"), 1, 5),
	}
	if res.Degraded {
		out.Explanation = degradedExplanation(a.Dimension())
	}
	return out
}

func (a *ReasoningDepthAgent) Run(ctx context.Context, articleText string, report *models.EvaluationReport) models.DimensionScore {
	result := a.Analyze(ctx, articleText)
	report.ReasoningDepth = result
	return result.DimensionScore
}

func (a *ReasoningDepthAgent) fallback() ParsedResult {
	return ParsedResult{
		"score":                    fallbackScore,
		"has_causal_analysis":      false,
		"has_comparative_analysis": false,
		"analysis_levels":          1,
		"depth_explanation":        "",
	}
}
