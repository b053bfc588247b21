package services

import (
	"errors"
	"testing"
)

var testSchema = Schema{
	{Name: "score", Kind: FieldScore, Required: true, HasRange: true, Min: 0, Max: 1},
	{Name: "flag", Kind: FieldBool, Default: false},
	{Name: "levels", Kind: FieldInt, HasRange: true, Min: 1, Max: 5, Default: 1},
	{Name: "explanation", Kind: FieldString, Default: ""},
	{Name: "items", Kind: FieldList, Default: []any{}},
}

func TestValidateWellFormedPayload(t *testing.T) {
	raw := `{"score": 0.75, "flag": true, "levels": 3, "explanation": "solid", "items": ["a", "b"]}`

	result, err := Validate(raw, testSchema)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := result.Float("score"); got != 0.75 {
		t.Errorf("Expected score 0.75, got %v", got)
	}
	if !result.Bool("flag") {
		t.Errorf("Expected flag true")
	}
	if got := result.Int("levels"); got != 3 {
		t.Errorf("Expected levels 3, got %d", got)
	}
	if got := result.String("explanation"); got != "solid" {
		t.Errorf("Expected explanation 'solid', got %q", got)
	}
	if got := result.List("items"); len(got) != 2 {
		t.Errorf("Expected 2 items, got %d", len(got))
	}
}

func TestValidateClampsOutOfRangeScore(t *testing.T) {
	result, err := Validate(`{"score": 1.7}`, testSchema)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := result.Float("score"); got != 1.0 {
		t.Errorf("Expected score clamped to 1.0, got %v", got)
	}

	result, err = Validate(`{"score": -0.3, "levels": 9}`, testSchema)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := result.Float("score"); got != 0.0 {
		t.Errorf("Expected score clamped to 0.0, got %v", got)
	}
	if got := result.Int("levels"); got != 5 {
		t.Errorf("Expected levels clamped to 5, got %d", got)
	}
}

func TestValidateExtractsPayloadFromProse(t *testing.T) {
	raw := "Sure! Here is the analysis you asked for:\n```json\n" +
		`{"score": 0.6, "explanation": "text with {braces} and \"quotes\""}` +
		"\n```\nLet me know if you need anything else."

	result, err := Validate(raw, testSchema)
	if err != nil {
		t.Fatalf("Validate failed on fenced payload: %v", err)
	}
	if got := result.Float("score"); got != 0.6 {
		t.Errorf("Expected score 0.6, got %v", got)
	}
	if got := result.String("explanation"); got != `text with {braces} and "quotes"` {
		t.Errorf("Unexpected explanation: %q", got)
	}
}

func TestValidateMissingOptionalFieldsGetDefaults(t *testing.T) {
	result, err := Validate(`{"score": 0.5}`, testSchema)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Bool("flag") {
		t.Errorf("Expected default flag false")
	}
	if got := result.Int("levels"); got != 1 {
		t.Errorf("Expected default levels 1, got %d", got)
	}
	if got := result.String("explanation"); got != "" {
		t.Errorf("Expected default empty explanation, got %q", got)
	}
	if got := result.List("items"); len(got) != 0 {
		t.Errorf("Expected default empty items, got %v", got)
	}
}

func TestValidateMissingRequiredField(t *testing.T) {
	_, err := Validate(`{"flag": true}`, testSchema)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Reason != MissingRequiredField {
		t.Errorf("Expected MissingRequiredField, got %s", verr.Reason)
	}
}

func TestValidateNotParseable(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", `{"score": }`} {
		_, err := Validate(raw, testSchema)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Expected ValidationError for %q, got %v", raw, err)
		}
		if verr.Reason != NotParseable {
			t.Errorf("Expected NotParseable for %q, got %s", raw, verr.Reason)
		}
	}
}

func TestValidateWrongTypeHandling(t *testing.T) {
	// Wrong type on an optional field falls back to its default
	result, err := Validate(`{"score": 0.5, "flag": "yes"}`, testSchema)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Bool("flag") {
		t.Errorf("Expected default flag false for unusable type")
	}

	// Wrong type on a required field is a hard failure
	_, err = Validate(`{"score": "high"}`, testSchema)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Reason != MissingRequiredField {
		t.Errorf("Expected MissingRequiredField, got %s", verr.Reason)
	}
}
