package services

import (
	"context"
	"fmt"

	"insightengine/models"
)

const (
	// maxArticleRunes bounds the article text embedded in a prompt. The
	// templates tell the model when the text was cut off.
	maxArticleRunes = 8000

	// maxArgumentComponents caps the component list so reports stay bounded.
	maxArgumentComponents = 12

	// fallacySeverityCap normalizes summed fallacy severities into a score:
	// score = max(0, 1 - sum(severity)/fallacySeverityCap).
	fallacySeverityCap = 2.0

	// fallbackScore is the mid-range score a degraded dimension reports.
	fallbackScore = 0.5
)

// Agent is one evaluation dimension: a prompt template, a response schema,
// and post-processing over the validated fields. Run writes its result into
// the report; each agent owns a distinct report field, so the four agents can
// run concurrently without locking.
type Agent interface {
	Dimension() models.Dimension
	Run(ctx context.Context, articleText string, report *models.EvaluationReport) models.DimensionScore
}

// truncateArticle bounds the prompt payload and reports whether it was cut.
func truncateArticle(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxArticleRunes {
		return text, false
	}
	return string(runes[:maxArticleRunes]), true
}

func truncationNote(truncated bool) string {
	if !truncated {
		return ""
	}
	return "\n\nNote: the article was truncated to fit the input limit, so the text above may end mid-sentence. Evaluate what is present."
}

func degradedExplanation(dim models.Dimension) string {
	return fmt.Sprintf("The %s dimension could not be fully evaluated because the inference service was unavailable; a fallback score is reported.", dim.Label())
}
