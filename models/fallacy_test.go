package models

import (
	"strings"
	"testing"
)

func TestParseFallacyType(t *testing.T) {
	cases := []struct {
		in   string
		want FallacyType
		ok   bool
	}{
		{"strawman", FallacyStrawman, true},
		{"Straw Man", FallacyStrawman, true},
		{"post-hoc", FallacyPostHoc, true},
		{"  Causal_Reversal ", FallacyCausalReversal, true},
		{"AD HOMINEM", FallacyAdHominem, true},
		{"appeal_to_authority", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseFallacyType(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseFallacyType(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tc := range cases {
		if got := ClampScore(tc.in); got != tc.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReportSummaryContainsScores(t *testing.T) {
	report := EvaluationReport{
		ArticleTitle: "Sample",
		OverallScore: 0.91,
		Strengths:    []string{"Strong reasoning depth (score 0.90)"},
	}
	summary := report.Summary()
	if summary == "" {
		t.Fatalf("Expected non-empty summary")
	}
	for _, want := range []string{"Sample", "0.91", "Strong reasoning depth"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Expected summary to contain %q", want)
		}
	}
}
