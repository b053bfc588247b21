package services

import (
	"context"
	"fmt"

	"insightengine/models"
)

const argumentStructureTemplate = `You are an expert reviewer of long-form articles, assessing argument structure.

Analyze the quality of the argument structure of the article below. Consider:

1. Logical ordering: are the parts of the article arranged in a sensible order?
2. Paragraph transitions: do paragraphs connect naturally?
3. Claim-evidence-conclusion linkage: does the evidence actually support the claims, and do the conclusions follow?
4. Structural clarity: can a reader easily follow the line of argument?
5. Completeness: is the chain from problem to conclusion unbroken?

Article:
%s%s

Return the analysis as JSON:
{
    "score": <0.0-1.0>,
    "has_clear_structure": true/false,
    "paragraph_coherence": <0.0-1.0 paragraph coherence score>,
    "argument_components": [
        {"type": "claim/evidence/reasoning/conclusion", "content": "content excerpt", "location": "location description"}
    ],
    "structure_explanation": "detailed explanation of the structure assessment with concrete examples"
}

Provide ONLY the JSON output without additional text or markdown formatting.`

var argumentStructureSchema = Schema{
	{Name: "score", Kind: FieldScore, Required: true, HasRange: true, Min: 0, Max: 1},
	{Name: "has_clear_structure", Kind: FieldBool, Default: false},
	{Name: "paragraph_coherence", Kind: FieldScore, HasRange: true, Min: 0, Max: 1, Default: 0.5},
	{Name: "argument_components", Kind: FieldList, Default: []any{}},
	{Name: "structure_explanation", Kind: FieldString, Default: ""},
}

// ArgumentStructureAgent assesses the logical organization of the article.
type ArgumentStructureAgent struct {
	invoker *Invoker
}

func NewArgumentStructureAgent(invoker *Invoker) *ArgumentStructureAgent {
	return &ArgumentStructureAgent{invoker: invoker}
}

func (a *ArgumentStructureAgent) Dimension() models.Dimension {
	return models.DimensionArgumentStructure
}

// Analyze evaluates argument structure. The component list is capped at
// maxArgumentComponents in the order the model supplied them.
func (a *ArgumentStructureAgent) Analyze(ctx context.Context, articleText string) models.ArgumentStructureResult {
	text, truncated := truncateArticle(articleText)
	prompt := fmt.Sprintf(argumentStructureTemplate, text, truncationNote(truncated))

	res := a.invoker.Invoke(ctx, prompt, argumentStructureSchema, a.fallback())

	out := models.ArgumentStructureResult{
		DimensionScore: models.DimensionScore{
			Score:       models.ClampScore(res.Fields.Float("score")),
			Explanation: res.Fields.String("structure_explanation"),
			Degraded:    res.Degraded,
		},
		HasClearStructure:  res.Fields.Bool("has_clear_structure"),
		ParagraphCoherence: models.ClampScore(res.Fields.Float("paragraph_coherence")),
		Components:         parseComponents(res.Fields.List("argument_components")),
	}
	if res.Degraded {
		out.Explanation = degradedExplanation(a.Dimension())
	}
	return out
}

func (a *ArgumentStructureAgent) Run(ctx context.Context, articleText string, report *models.EvaluationReport) models.DimensionScore {
	result := a.Analyze(ctx, articleText)
	report.ArgumentStructure = result
	return result.DimensionScore
}

func (a *ArgumentStructureAgent) fallback() ParsedResult {
	return ParsedResult{
		"score":                 fallbackScore,
		"has_clear_structure":   false,
		"paragraph_coherence":   fallbackScore,
		"argument_components":   []any{},
		"structure_explanation": "",
	}
}

// parseComponents decodes the component list, preserving the model's order
// and dropping entries that are not objects.
func parseComponents(raw []any) []models.ArgumentComponent {
	components := make([]models.ArgumentComponent, 0, len(raw))
	for _, entry := range raw {
		if len(components) == maxArgumentComponents {
			break
		}
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		components = append(components, models.ArgumentComponent{
			Role:     stringField(m, "type"),
			Content:  stringField(m, "content"),
			Location: stringField(m, "location"),
		})
	}
	return components
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]any, key string) float64 {
	f, _ := toFloat(m[key])
	return f
}
