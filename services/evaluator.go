package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"insightengine/config"
	"insightengine/models"
)

// Weights control how the four dimension scores combine into the overall
// score. They must sum to 1.
type Weights struct {
	ReasoningDepth    float64
	ArgumentStructure float64
	Consistency       float64
	LogicalFallacies  float64
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{
		ReasoningDepth:    0.30,
		ArgumentStructure: 0.30,
		Consistency:       0.25,
		LogicalFallacies:  0.15,
	}
}

func (w Weights) sum() float64 {
	return w.ReasoningDepth + w.ArgumentStructure + w.Consistency + w.LogicalFallacies
}

// EvaluatorOptions configure an Evaluator. Zero-valued fields fall back to
// defaults.
type EvaluatorOptions struct {
	Weights            Weights
	StrengthThreshold  float64                      // score >= threshold contributes a strength
	WeaknessThresholds map[models.Dimension]float64 // score < threshold contributes a weakness
	Invoker            InvokerConfig
}

// Evaluator orchestrates the four analysis agents into one scored report.
// It carries no retry or timeout logic of its own; all resilience lives in
// the invoker.
type Evaluator struct {
	weights            Weights
	strengthThreshold  float64
	weaknessThresholds map[models.Dimension]float64
	agents             []Agent
}

// ProgressFunc observes each dimension as it completes. Calls are serialized.
type ProgressFunc func(dim models.Dimension, score models.DimensionScore)

// NewEvaluator builds an evaluator over the given text generator. It returns
// an error for configuration problems (weights not summing to 1, thresholds
// out of range); those surface at construction time, never during evaluation.
func NewEvaluator(gen TextGenerator, opts EvaluatorOptions) (*Evaluator, error) {
	if gen == nil {
		return nil, errors.New("evaluator requires a text generator")
	}

	weights := opts.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	if weights.ReasoningDepth < 0 || weights.ArgumentStructure < 0 ||
		weights.Consistency < 0 || weights.LogicalFallacies < 0 {
		return nil, errors.New("dimension weights must be non-negative")
	}
	if math.Abs(weights.sum()-1.0) > 0.001 {
		return nil, fmt.Errorf("dimension weights must sum to 1, got %.3f", weights.sum())
	}

	strength := opts.StrengthThreshold
	if strength == 0 {
		strength = 0.8
	}
	if strength < 0 || strength > 1 {
		return nil, fmt.Errorf("strength threshold must be in [0,1], got %.3f", strength)
	}

	weakness := make(map[models.Dimension]float64, 4)
	for _, dim := range allDimensions() {
		threshold := opts.WeaknessThresholds[dim]
		if threshold == 0 {
			threshold = 0.6
		}
		if threshold < 0 || threshold > 1 {
			return nil, fmt.Errorf("weakness threshold for %s must be in [0,1], got %.3f", dim, threshold)
		}
		weakness[dim] = threshold
	}

	invoker := NewInvoker(gen, opts.Invoker)
	return &Evaluator{
		weights:            weights,
		strengthThreshold:  strength,
		weaknessThresholds: weakness,
		agents: []Agent{
			NewReasoningDepthAgent(invoker),
			NewArgumentStructureAgent(invoker),
			NewConsistencyAgent(invoker),
			NewLogicalFallacyAgent(invoker),
		},
	}, nil
}

func allDimensions() []models.Dimension {
	return []models.Dimension{
		models.DimensionReasoningDepth,
		models.DimensionArgumentStructure,
		models.DimensionConsistency,
		models.DimensionLogicalFallacies,
	}
}

// Evaluate runs all four analyses against the input and aggregates them into
// a report. The only hard failure is empty input; any failure inside a single
// dimension is absorbed into a degraded result.
func (e *Evaluator) Evaluate(ctx context.Context, input models.EvaluationInput) (models.EvaluationReport, error) {
	return e.EvaluateWithProgress(ctx, input, nil)
}

// EvaluateWithProgress is Evaluate with a callback fired as each dimension
// completes, used to stream partial results to clients.
func (e *Evaluator) EvaluateWithProgress(ctx context.Context, input models.EvaluationInput, onDimension ProgressFunc) (models.EvaluationReport, error) {
	if strings.TrimSpace(input.Text) == "" {
		return models.EvaluationReport{}, models.ErrEmptyArticle
	}

	report := models.EvaluationReport{
		ArticleTitle: input.Title,
		CreatedAt:    time.Now().Unix(),
	}

	// Fan out the four agents and join them all. Each agent writes a
	// distinct report field, and a failure in one never short-circuits the
	// others; cancellation makes the in-flight invokers return fallbacks, so
	// the join still completes with a best-effort report.
	var wg sync.WaitGroup
	var progressMu sync.Mutex
	for _, agent := range e.agents {
		wg.Add(1)
		go func(agent Agent) {
			defer wg.Done()
			score := agent.Run(ctx, input.Text, &report)
			if onDimension != nil {
				progressMu.Lock()
				onDimension(agent.Dimension(), score)
				progressMu.Unlock()
			}
		}(agent)
	}
	wg.Wait()

	e.aggregate(&report)
	return report, nil
}

// aggregate computes the weighted overall score and derives strengths,
// weaknesses, and recommendations with a deterministic threshold pass over
// the four results; no further inference calls are made here.
func (e *Evaluator) aggregate(report *models.EvaluationReport) {
	scores := map[models.Dimension]models.DimensionScore{
		models.DimensionReasoningDepth:    report.ReasoningDepth.DimensionScore,
		models.DimensionArgumentStructure: report.ArgumentStructure.DimensionScore,
		models.DimensionConsistency:       report.Consistency.DimensionScore,
		models.DimensionLogicalFallacies:  report.LogicalFallacies.DimensionScore,
	}

	report.OverallScore = models.ClampScore(
		e.weights.ReasoningDepth*scores[models.DimensionReasoningDepth].Score +
			e.weights.ArgumentStructure*scores[models.DimensionArgumentStructure].Score +
			e.weights.Consistency*scores[models.DimensionConsistency].Score +
			e.weights.LogicalFallacies*scores[models.DimensionLogicalFallacies].Score)

	report.Strengths = []string{}
	report.Weaknesses = []string{}
	report.Recommendations = []string{}

	for _, dim := range allDimensions() {
		ds := scores[dim]
		if ds.Degraded {
			report.DegradedDimensions = append(report.DegradedDimensions, dim)
			report.Weaknesses = append(report.Weaknesses,
				fmt.Sprintf("%s could not be fully evaluated; a fallback score of %.2f was used", dim.Label(), ds.Score))
			continue
		}
		if ds.Score >= e.strengthThreshold {
			report.Strengths = append(report.Strengths, strengthNote(dim, ds.Score))
		}
		if ds.Score < e.weaknessThresholds[dim] {
			report.Weaknesses = append(report.Weaknesses, weaknessNote(dim, ds.Score, report))
			if rec := genericRecommendation(dim, report); rec != "" {
				report.Recommendations = append(report.Recommendations, rec)
			}
		}
	}

	// Specific findings produce targeted recommendations even when the
	// dimension score stayed above its weakness threshold.
	report.Recommendations = append(report.Recommendations, fallacyRecommendations(report.LogicalFallacies)...)
	if len(report.Consistency.Contradictions) > 0 && report.Consistency.Score < e.strengthThreshold {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Resolve the %d internal contradiction(s), starting with: %s",
				len(report.Consistency.Contradictions), report.Consistency.Contradictions[0]))
	}
}

func strengthNote(dim models.Dimension, score float64) string {
	switch dim {
	case models.DimensionConsistency:
		return fmt.Sprintf("Strong consistency: no significant internal contradictions (score %.2f)", score)
	case models.DimensionLogicalFallacies:
		return fmt.Sprintf("Sound fallacy detection result: no significant logical fallacies (score %.2f)", score)
	}
	return fmt.Sprintf("Strong %s (score %.2f)", dim.Label(), score)
}

func weaknessNote(dim models.Dimension, score float64, report *models.EvaluationReport) string {
	switch dim {
	case models.DimensionConsistency:
		if n := len(report.Consistency.Contradictions); n > 0 {
			return fmt.Sprintf("Weak consistency: %d internal contradiction(s) detected (score %.2f)", n, score)
		}
	case models.DimensionLogicalFallacies:
		if n := len(report.LogicalFallacies.Fallacies); n > 0 {
			return fmt.Sprintf("Weak fallacy detection result: %d logical fallacy(ies) detected (score %.2f)", n, score)
		}
	}
	return fmt.Sprintf("Weak %s (score %.2f)", dim.Label(), score)
}

// genericRecommendation is the fixed per-dimension template used when a
// dimension is weak. Dimensions whose findings already produce targeted
// recommendations return "" so the generic text is not duplicated.
func genericRecommendation(dim models.Dimension, report *models.EvaluationReport) string {
	switch dim {
	case models.DimensionReasoningDepth:
		return "Deepen the analysis: move from surface observations to underlying causes and potential implications."
	case models.DimensionArgumentStructure:
		return "Strengthen paragraph transitions and the linkage between claims, evidence, and conclusions."
	case models.DimensionConsistency:
		if len(report.Consistency.Contradictions) > 0 {
			return ""
		}
		return "Review the argument so earlier and later claims agree."
	case models.DimensionLogicalFallacies:
		if len(report.LogicalFallacies.Fallacies) > 0 {
			return ""
		}
		return "Tighten the argumentation to avoid logical fallacies."
	}
	return ""
}

// fallacyRecommendations names the detected fallacy kinds, capped at two like
// the report's other finding lists.
func fallacyRecommendations(result models.LogicalFallacyResult) []string {
	recs := make([]string, 0, 2)
	for i, f := range result.Fallacies {
		if i == 2 {
			break
		}
		rec := fmt.Sprintf("Correct the %s fallacy", f.Type.Label())
		if f.Location != "" {
			rec += fmt.Sprintf(" (%s)", f.Location)
		}
		if f.Description != "" {
			rec += ": " + f.Description
		}
		recs = append(recs, rec)
	}
	return recs
}

// Package-level evaluator used by the HTTP and websocket layers.
var defaultEvaluator *Evaluator

// InitEvaluationService builds the Gemini-backed evaluator from the loaded
// configuration. Configuration problems (missing API key, bad weights) are
// reported here, at startup, not during evaluation.
func InitEvaluationService(cfg *config.Config) error {
	gen, err := NewGeminiGenerator(context.Background(), cfg.Gemini.ApiKey, cfg.Gemini.Model, cfg.Gemini.Temperature)
	if err != nil {
		return err
	}
	evaluator, err := NewEvaluator(gen, OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	defaultEvaluator = evaluator
	return nil
}

// OptionsFromConfig translates the yaml configuration into evaluator options.
func OptionsFromConfig(cfg *config.Config) EvaluatorOptions {
	ev := cfg.Evaluation
	return EvaluatorOptions{
		Weights: Weights{
			ReasoningDepth:    ev.Weights.ReasoningDepth,
			ArgumentStructure: ev.Weights.ArgumentStructure,
			Consistency:       ev.Weights.Consistency,
			LogicalFallacies:  ev.Weights.LogicalFallacies,
		},
		StrengthThreshold: ev.StrengthThreshold,
		WeaknessThresholds: map[models.Dimension]float64{
			models.DimensionReasoningDepth:    ev.WeaknessThresholds.ReasoningDepth,
			models.DimensionArgumentStructure: ev.WeaknessThresholds.ArgumentStructure,
			models.DimensionConsistency:       ev.WeaknessThresholds.Consistency,
			models.DimensionLogicalFallacies:  ev.WeaknessThresholds.LogicalFallacies,
		},
		Invoker: InvokerConfig{
			MaxRetries: ev.MaxRetries,
			Timeout:    time.Duration(ev.TimeoutSeconds) * time.Second,
			BaseDelay:  time.Duration(ev.BackoffBaseMillis) * time.Millisecond,
			MaxDelay:   time.Duration(ev.BackoffMaxMillis) * time.Millisecond,
		},
	}
}

// EvaluateArticle evaluates an article with the service evaluator.
func EvaluateArticle(ctx context.Context, text, title string) (models.EvaluationReport, error) {
	return EvaluateArticleWithProgress(ctx, text, title, nil)
}

// EvaluateArticleWithProgress is EvaluateArticle with a per-dimension
// completion callback.
func EvaluateArticleWithProgress(ctx context.Context, text, title string, onDimension ProgressFunc) (models.EvaluationReport, error) {
	if defaultEvaluator == nil {
		return models.EvaluationReport{}, errors.New("evaluation service not initialized")
	}
	input, err := models.NewEvaluationInput(text, title)
	if err != nil {
		return models.EvaluationReport{}, err
	}
	return defaultEvaluator.EvaluateWithProgress(ctx, input, onDimension)
}
