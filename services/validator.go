package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationReason classifies why a response failed validation.
type ValidationReason string

const (
	NotParseable         ValidationReason = "not_parseable"
	MissingRequiredField ValidationReason = "missing_required_field"
)

// ValidationError reports that an inference response could not be decoded
// against its schema.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response validation failed (%s): %s", e.Reason, e.Detail)
}

// FieldKind is the expected type of a schema field.
type FieldKind int

const (
	FieldScore  FieldKind = iota // float64, clamped to [Min,Max] when HasRange
	FieldInt                     // integer, clamped to [Min,Max] when HasRange
	FieldBool
	FieldString
	FieldList // []any; element decoding is the caller's concern
)

// FieldSpec declares one field of an expected response payload.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	HasRange bool
	Min, Max float64
	Default  any // used when the field is absent and not required
}

// Schema describes the structured payload an agent expects back.
type Schema []FieldSpec

// ParsedResult holds the validated fields of one response.
type ParsedResult map[string]any

func (r ParsedResult) Float(name string) float64 {
	v, _ := r[name].(float64)
	return v
}

func (r ParsedResult) Int(name string) int {
	switch v := r[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (r ParsedResult) Bool(name string) bool {
	v, _ := r[name].(bool)
	return v
}

func (r ParsedResult) String(name string) string {
	v, _ := r[name].(string)
	return v
}

func (r ParsedResult) List(name string) []any {
	v, _ := r[name].([]any)
	return v
}

// Validate decodes the raw model output against the schema. The model is not
// guaranteed to return only JSON, so the payload is first located inside any
// surrounding prose or markdown fences. Missing optional fields get their
// declared defaults; numeric fields outside their range are clamped. It fails
// only when no JSON object can be decoded at all or a required field is absent.
func Validate(raw string, schema Schema) (ParsedResult, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return nil, &ValidationError{Reason: NotParseable, Detail: "no JSON object found in response"}
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, &ValidationError{Reason: NotParseable, Detail: err.Error()}
	}

	result := make(ParsedResult, len(schema))
	for _, field := range schema {
		value, present := decoded[field.Name]
		if !present || value == nil {
			if field.Required {
				return nil, &ValidationError{Reason: MissingRequiredField, Detail: field.Name}
			}
			result[field.Name] = field.Default
			continue
		}
		coerced, ok := coerceField(field, value)
		if !ok {
			if field.Required {
				return nil, &ValidationError{
					Reason: MissingRequiredField,
					Detail: fmt.Sprintf("%s has unusable type %T", field.Name, value),
				}
			}
			coerced = field.Default
		}
		result[field.Name] = coerced
	}
	return result, nil
}

func coerceField(field FieldSpec, value any) (any, bool) {
	switch field.Kind {
	case FieldScore:
		f, ok := toFloat(value)
		if !ok {
			return nil, false
		}
		if field.HasRange {
			f = clampFloat(f, field.Min, field.Max)
		}
		return f, true
	case FieldInt:
		f, ok := toFloat(value)
		if !ok {
			return nil, false
		}
		n := int(f)
		if field.HasRange {
			n = clampInt(n, int(field.Min), int(field.Max))
		}
		return n, true
	case FieldBool:
		b, ok := value.(bool)
		return b, ok
	case FieldString:
		s, ok := value.(string)
		return s, ok
	case FieldList:
		l, ok := value.([]any)
		return l, ok
	}
	return nil, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// extractJSON locates the first balanced JSON object in the text, tolerating
// markdown fences and prose around it.
func extractJSON(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return cleaned[start : i+1], true
			}
		}
	}
	return "", false
}
