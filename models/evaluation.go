package models

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEmptyArticle is returned when an evaluation is requested for empty text.
var ErrEmptyArticle = errors.New("article text must not be empty")

// Dimension names one of the four evaluation axes.
type Dimension string

const (
	DimensionReasoningDepth    Dimension = "reasoning_depth"
	DimensionArgumentStructure Dimension = "argument_structure"
	DimensionConsistency       Dimension = "consistency"
	DimensionLogicalFallacies  Dimension = "logical_fallacies"
)

// Label returns the dimension name used in report text.
func (d Dimension) Label() string {
	switch d {
	case DimensionReasoningDepth:
		return "reasoning depth"
	case DimensionArgumentStructure:
		return "argument structure"
	case DimensionConsistency:
		return "consistency"
	case DimensionLogicalFallacies:
		return "fallacy detection"
	}
	return string(d)
}

// EvaluationInput is the article to evaluate. Construct with NewEvaluationInput.
type EvaluationInput struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// NewEvaluationInput validates and builds an EvaluationInput.
func NewEvaluationInput(text, title string) (EvaluationInput, error) {
	if strings.TrimSpace(text) == "" {
		return EvaluationInput{}, ErrEmptyArticle
	}
	return EvaluationInput{Text: text, Title: title}, nil
}

// DimensionScore is the part every dimension result shares: a 0-1 score, a
// free-text explanation, and whether the value is a fallback produced after
// the inference service could not be reached.
type DimensionScore struct {
	Score       float64 `json:"score" bson:"score"`
	Explanation string  `json:"explanation" bson:"explanation"`
	Degraded    bool    `json:"degraded,omitempty" bson:"degraded,omitempty"`
}

// ReasoningDepthResult is the outcome of the reasoning depth analysis.
type ReasoningDepthResult struct {
	DimensionScore         `bson:",inline"`
	HasCausalAnalysis      bool `json:"hasCausalAnalysis" bson:"hasCausalAnalysis"`
	HasComparativeAnalysis bool `json:"hasComparativeAnalysis" bson:"hasComparativeAnalysis"`
	AnalysisLevels         int  `json:"analysisLevels" bson:"analysisLevels"` // 1-5
}

// ArgumentComponent is one identified piece of the article's argumentation.
type ArgumentComponent struct {
	Role     string `json:"role" bson:"role"` // claim, evidence, reasoning, conclusion
	Content  string `json:"content" bson:"content"`
	Location string `json:"location" bson:"location"`
}

// ArgumentStructureResult is the outcome of the argument structure analysis.
type ArgumentStructureResult struct {
	DimensionScore     `bson:",inline"`
	HasClearStructure  bool                `json:"hasClearStructure" bson:"hasClearStructure"`
	ParagraphCoherence float64             `json:"paragraphCoherence" bson:"paragraphCoherence"`
	Components         []ArgumentComponent `json:"components" bson:"components"`
}

// ConsistencyResult is the outcome of the internal consistency analysis.
// Contradictions are opaque descriptions as returned by the model.
type ConsistencyResult struct {
	DimensionScore `bson:",inline"`
	Contradictions []string `json:"contradictions" bson:"contradictions"`
}

// LogicalFallacyResult is the outcome of the fallacy detection analysis.
// A score of 1.0 means no fallacies were found.
type LogicalFallacyResult struct {
	DimensionScore `bson:",inline"`
	Fallacies      []LogicalFallacy `json:"fallacies" bson:"fallacies"`
}

// EvaluationReport is the complete evaluation of one article. All four
// dimensions are always present; degraded ones carry fallback values.
type EvaluationReport struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ArticleTitle string             `json:"articleTitle,omitempty" bson:"articleTitle,omitempty"`
	OverallScore float64            `json:"overallScore" bson:"overallScore"`

	ReasoningDepth    ReasoningDepthResult    `json:"reasoningDepth" bson:"reasoningDepth"`
	ArgumentStructure ArgumentStructureResult `json:"argumentStructure" bson:"argumentStructure"`
	Consistency       ConsistencyResult       `json:"consistency" bson:"consistency"`
	LogicalFallacies  LogicalFallacyResult    `json:"logicalFallacies" bson:"logicalFallacies"`

	Strengths          []string    `json:"strengths" bson:"strengths"`
	Weaknesses         []string    `json:"weaknesses" bson:"weaknesses"`
	Recommendations    []string    `json:"recommendations" bson:"recommendations"`
	DegradedDimensions []Dimension `json:"degradedDimensions,omitempty" bson:"degradedDimensions,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
}

// ClampScore bounds a score to [0,1]. Out-of-range values from the inference
// service are clamped rather than propagated.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Summary renders a human-readable digest of the report.
func (r EvaluationReport) Summary() string {
	var sb strings.Builder
	sb.WriteString("Reasoning & Logic Evaluation Summary\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	if r.ArticleTitle != "" {
		sb.WriteString(fmt.Sprintf("Article: %s\n\n", r.ArticleTitle))
	}
	sb.WriteString(fmt.Sprintf("Overall Score: %.2f/1.00\n\n", r.OverallScore))

	sb.WriteString("Component Scores:\n")
	sb.WriteString(fmt.Sprintf("  - Reasoning Depth: %.2f\n", r.ReasoningDepth.Score))
	sb.WriteString(fmt.Sprintf("  - Argument Structure: %.2f\n", r.ArgumentStructure.Score))
	sb.WriteString(fmt.Sprintf("  - Consistency: %.2f\n", r.Consistency.Score))
	sb.WriteString(fmt.Sprintf("  - Logical Soundness: %.2f\n\n", r.LogicalFallacies.Score))

	if len(r.DegradedDimensions) > 0 {
		sb.WriteString("Degraded (fallback) dimensions:\n")
		for _, d := range r.DegradedDimensions {
			sb.WriteString(fmt.Sprintf("  ! %s\n", d.Label()))
		}
		sb.WriteString("\n")
	}
	if len(r.Strengths) > 0 {
		sb.WriteString("Strengths:\n")
		for _, s := range r.Strengths {
			sb.WriteString(fmt.Sprintf("  + %s\n", s))
		}
		sb.WriteString("\n")
	}
	if len(r.Weaknesses) > 0 {
		sb.WriteString("Weaknesses:\n")
		for _, w := range r.Weaknesses {
			sb.WriteString(fmt.Sprintf("  - %s\n", w))
		}
		sb.WriteString("\n")
	}
	if len(r.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for i, rec := range r.Recommendations {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, rec))
		}
	}
	return sb.String()
}
