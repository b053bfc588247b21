package models

import "strings"

// FallacyType identifies one of the logical fallacy kinds the engine recognizes.
type FallacyType string

const (
	FallacyOvergeneralization  FallacyType = "overgeneralization"
	FallacyCausalReversal      FallacyType = "causal_reversal"
	FallacyFalseDilemma        FallacyType = "false_dilemma"
	FallacySlipperySlope       FallacyType = "slippery_slope"
	FallacyAdHominem           FallacyType = "ad_hominem"
	FallacyCircularReasoning   FallacyType = "circular_reasoning"
	FallacyStrawman            FallacyType = "strawman"
	FallacyHastyGeneralization FallacyType = "hasty_generalization"
	FallacyPostHoc             FallacyType = "post_hoc"
)

var knownFallacyTypes = map[string]FallacyType{
	"overgeneralization":   FallacyOvergeneralization,
	"causal_reversal":      FallacyCausalReversal,
	"false_dilemma":        FallacyFalseDilemma,
	"slippery_slope":       FallacySlipperySlope,
	"ad_hominem":           FallacyAdHominem,
	"circular_reasoning":   FallacyCircularReasoning,
	"strawman":             FallacyStrawman,
	"straw_man":            FallacyStrawman,
	"hasty_generalization": FallacyHastyGeneralization,
	"post_hoc":             FallacyPostHoc,
}

// ParseFallacyType maps a fallacy kind string returned by the model onto the
// closed enumeration. The model's vocabulary cannot be fully controlled, so
// the lookup is tolerant of case, spaces, and hyphens. The second return value
// is false for kinds outside the enumeration.
func ParseFallacyType(s string) (FallacyType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	ft, ok := knownFallacyTypes[key]
	return ft, ok
}

// Label returns a human-readable name for the fallacy type.
func (f FallacyType) Label() string {
	return strings.ReplaceAll(string(f), "_", " ")
}

// LogicalFallacy is a single reasoning flaw detected in the article.
type LogicalFallacy struct {
	Type        FallacyType `json:"type" bson:"type"`
	Location    string      `json:"location" bson:"location"`
	Description string      `json:"description" bson:"description"`
	Severity    float64     `json:"severity" bson:"severity"` // 0-1
}
