package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"insightengine/models"
)

// dimensionResponder answers each agent's prompt with a canned payload, keyed
// by the distinctive phrase in its template.
func dimensionResponder(depth, structure, consistency, fallacies string) *stubGenerator {
	return &stubGenerator{fn: func(calls int, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "assessing reasoning depth"):
			return depth, nil
		case strings.Contains(prompt, "assessing argument structure"):
			return structure, nil
		case strings.Contains(prompt, "checking internal consistency"):
			return consistency, nil
		case strings.Contains(prompt, "detecting logical fallacies"):
			return fallacies, nil
		}
		return "", fmt.Errorf("unexpected prompt: %.60s", prompt)
	}}
}

func scoresResponder(depth, structure, consistency, fallacies float64) *stubGenerator {
	return dimensionResponder(
		fmt.Sprintf(`{"score": %v, "has_causal_analysis": true, "has_comparative_analysis": true, "analysis_levels": 3, "depth_explanation": "e"}`, depth),
		fmt.Sprintf(`{"score": %v, "has_clear_structure": true, "paragraph_coherence": 0.8, "argument_components": [], "structure_explanation": "e"}`, structure),
		fmt.Sprintf(`{"score": %v, "contradictions": [], "consistency_explanation": "e"}`, consistency),
		fmt.Sprintf(`{"score": %v, "fallacies": [], "fallacy_explanation": "e"}`, fallacies),
	)
}

func newTestEvaluator(t *testing.T, gen TextGenerator) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(gen, EvaluatorOptions{Invoker: testInvokerConfig()})
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	return e
}

func mustInput(t *testing.T, text, title string) models.EvaluationInput {
	t.Helper()
	input, err := models.NewEvaluationInput(text, title)
	if err != nil {
		t.Fatalf("NewEvaluationInput failed: %v", err)
	}
	return input
}

func TestEvaluateWeightedOverallScore(t *testing.T) {
	e := newTestEvaluator(t, scoresResponder(0.9, 0.85, 0.95, 1.0))

	report, err := e.Evaluate(context.Background(), mustInput(t, "a well-reasoned article", "Test"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	want := 0.30*0.9 + 0.30*0.85 + 0.25*0.95 + 0.15*1.0 // 0.9125
	if math.Abs(report.OverallScore-want) > 1e-9 {
		t.Errorf("Expected overall score %v, got %v", want, report.OverallScore)
	}

	if len(report.Weaknesses) != 0 {
		t.Errorf("Expected no weaknesses, got %v", report.Weaknesses)
	}
	for _, label := range []string{"reasoning depth", "argument structure", "consistency", "fallacy detection"} {
		found := false
		for _, s := range report.Strengths {
			if strings.Contains(s, label) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected a strength naming %q, got %v", label, report.Strengths)
		}
	}
	if len(report.DegradedDimensions) != 0 {
		t.Errorf("Expected no degraded dimensions, got %v", report.DegradedDimensions)
	}
}

func TestEvaluateWeightedSumProperty(t *testing.T) {
	cases := []struct{ d, s, c, f float64 }{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.5, 0.5, 0.5, 0.5},
		{0.1, 0.9, 0.3, 0.7},
		{0.65, 0.42, 0.88, 0.13},
	}
	for _, tc := range cases {
		e := newTestEvaluator(t, scoresResponder(tc.d, tc.s, tc.c, tc.f))
		report, err := e.Evaluate(context.Background(), mustInput(t, "article", ""))
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		want := 0.30*tc.d + 0.30*tc.s + 0.25*tc.c + 0.15*tc.f
		if math.Abs(report.OverallScore-want) > 1e-9 {
			t.Errorf("scores (%v,%v,%v,%v): expected overall %v, got %v", tc.d, tc.s, tc.c, tc.f, want, report.OverallScore)
		}
		if report.OverallScore < 0 || report.OverallScore > 1 {
			t.Errorf("overall score out of range: %v", report.OverallScore)
		}
	}
}

func TestEvaluateAllWeakDimensions(t *testing.T) {
	e := newTestEvaluator(t, scoresResponder(0.3, 0.4, 0.5, 0.2))

	report, err := e.Evaluate(context.Background(), mustInput(t, "a poorly reasoned article", ""))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(report.Strengths) != 0 {
		t.Errorf("Expected no strengths, got %v", report.Strengths)
	}
	if len(report.Weaknesses) != 4 {
		t.Errorf("Expected 4 weaknesses, got %v", report.Weaknesses)
	}
	if len(report.Recommendations) == 0 {
		t.Errorf("Expected recommendations for weak dimensions")
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	e := newTestEvaluator(t, scoresResponder(1, 1, 1, 1))

	for _, text := range []string{"", "   \n\t "} {
		_, err := e.Evaluate(context.Background(), models.EvaluationInput{Text: text})
		if !errors.Is(err, models.ErrEmptyArticle) {
			t.Errorf("Expected ErrEmptyArticle for %q, got %v", text, err)
		}
	}

	if _, err := models.NewEvaluationInput("  ", "title"); !errors.Is(err, models.ErrEmptyArticle) {
		t.Errorf("Expected ErrEmptyArticle from constructor, got %v", err)
	}
}

func TestEvaluateDegradesFallacyDimensionGracefully(t *testing.T) {
	gen := &stubGenerator{fn: func(calls int, prompt string) (string, error) {
		if strings.Contains(prompt, "detecting logical fallacies") {
			return "", errors.New("service down")
		}
		switch {
		case strings.Contains(prompt, "assessing reasoning depth"):
			return `{"score": 0.9, "depth_explanation": "e"}`, nil
		case strings.Contains(prompt, "assessing argument structure"):
			return `{"score": 0.8, "structure_explanation": "e"}`, nil
		case strings.Contains(prompt, "checking internal consistency"):
			return `{"score": 0.7, "consistency_explanation": "e"}`, nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}}
	e := newTestEvaluator(t, gen)

	report, err := e.Evaluate(context.Background(), mustInput(t, "article", ""))
	if err != nil {
		t.Fatalf("Evaluate must not fail for one unavailable dimension: %v", err)
	}

	if !report.LogicalFallacies.Degraded {
		t.Fatalf("Expected degraded fallacy dimension")
	}
	if report.LogicalFallacies.Score != 0.5 {
		t.Errorf("Expected fallback fallacy score 0.5, got %v", report.LogicalFallacies.Score)
	}
	if len(report.LogicalFallacies.Fallacies) != 0 {
		t.Errorf("Expected empty fallacy list, got %v", report.LogicalFallacies.Fallacies)
	}

	want := 0.30*0.9 + 0.30*0.8 + 0.25*0.7 + 0.15*0.5
	if math.Abs(report.OverallScore-want) > 1e-9 {
		t.Errorf("Expected overall %v computed with fallback, got %v", want, report.OverallScore)
	}

	if len(report.DegradedDimensions) != 1 || report.DegradedDimensions[0] != models.DimensionLogicalFallacies {
		t.Errorf("Expected logical_fallacies marked degraded, got %v", report.DegradedDimensions)
	}
	surfaced := false
	for _, w := range report.Weaknesses {
		if strings.Contains(w, "could not be fully evaluated") {
			surfaced = true
		}
	}
	if !surfaced {
		t.Errorf("Expected degradation surfaced in report, got %v", report.Weaknesses)
	}
}

func TestEvaluateRecommendationNamesFallacyKind(t *testing.T) {
	gen := dimensionResponder(
		`{"score": 0.9, "depth_explanation": "e"}`,
		`{"score": 0.85, "structure_explanation": "e"}`,
		`{"score": 0.95, "contradictions": [], "consistency_explanation": "e"}`,
		`{"fallacies": [{"type": "strawman", "location": "paragraph 3", "description": "misstates the opposing view", "severity": 0.4}], "fallacy_explanation": "one found"}`,
	)
	e := newTestEvaluator(t, gen)

	report, err := e.Evaluate(context.Background(), mustInput(t, "article", ""))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// score = 1 - 0.4/2.0 = 0.8 per the normalization formula
	if math.Abs(report.LogicalFallacies.Score-0.8) > 1e-9 {
		t.Errorf("Expected normalized fallacy score 0.8, got %v", report.LogicalFallacies.Score)
	}

	found := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "strawman") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a recommendation naming the strawman fallacy, got %v", report.Recommendations)
	}
}

func TestEvaluateCancelledContextStillCompletes(t *testing.T) {
	e := newTestEvaluator(t, scoresResponder(1, 1, 1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.Evaluate(ctx, mustInput(t, "article", ""))
	if err != nil {
		t.Fatalf("Expected best-effort report on cancellation, got error: %v", err)
	}
	if len(report.DegradedDimensions) != 4 {
		t.Errorf("Expected all four dimensions degraded, got %v", report.DegradedDimensions)
	}
	if math.Abs(report.OverallScore-0.5) > 1e-9 {
		t.Errorf("Expected overall fallback score 0.5, got %v", report.OverallScore)
	}
}

func TestEvaluateWithProgressReportsEachDimension(t *testing.T) {
	e := newTestEvaluator(t, scoresResponder(0.9, 0.9, 0.9, 0.9))

	seen := make(map[models.Dimension]bool)
	_, err := e.EvaluateWithProgress(context.Background(), mustInput(t, "article", ""),
		func(dim models.Dimension, score models.DimensionScore) {
			seen[dim] = true
		})
	if err != nil {
		t.Fatalf("EvaluateWithProgress failed: %v", err)
	}
	if len(seen) != 4 {
		t.Errorf("Expected progress for 4 dimensions, got %v", seen)
	}
}

func TestNewEvaluatorConfigurationErrors(t *testing.T) {
	gen := scoresResponder(1, 1, 1, 1)

	if _, err := NewEvaluator(nil, EvaluatorOptions{}); err == nil {
		t.Errorf("Expected error for nil generator")
	}

	badWeights := EvaluatorOptions{Weights: Weights{ReasoningDepth: 0.5, ArgumentStructure: 0.5, Consistency: 0.5, LogicalFallacies: 0.5}}
	if _, err := NewEvaluator(gen, badWeights); err == nil {
		t.Errorf("Expected error for weights not summing to 1")
	}

	negWeights := EvaluatorOptions{Weights: Weights{ReasoningDepth: -0.3, ArgumentStructure: 0.6, Consistency: 0.4, LogicalFallacies: 0.3}}
	if _, err := NewEvaluator(gen, negWeights); err == nil {
		t.Errorf("Expected error for negative weight")
	}

	badThreshold := EvaluatorOptions{StrengthThreshold: 1.5}
	if _, err := NewEvaluator(gen, badThreshold); err == nil {
		t.Errorf("Expected error for out-of-range strength threshold")
	}

	badWeakness := EvaluatorOptions{WeaknessThresholds: map[models.Dimension]float64{models.DimensionConsistency: -2}}
	if _, err := NewEvaluator(gen, badWeakness); err == nil {
		t.Errorf("Expected error for out-of-range weakness threshold")
	}

	if _, err := NewEvaluator(gen, EvaluatorOptions{}); err != nil {
		t.Errorf("Expected defaults to be valid, got %v", err)
	}
}
