package workflow_test

import (
	"strings"
	"testing"

	"github.com/typevault/typevault/workflow"
)

func validResult() *workflow.AnalysisResult {
	return &workflow.AnalysisResult{
		StylePrimary: workflow.Classified{
			Value:      "serif",
			Confidence: 0.9,
			Evidence:   []string{"OS/2 family class"},
		},
		Moods:    []workflow.Tag{{Value: "elegant", Confidence: 0.8}},
		UseCases: []workflow.Tag{{Value: "editorial", Confidence: 0.7}},
	}
}

func TestValidateAccepts(t *testing.T) {
	outcome := workflow.Validate(validResult())
	if !outcome.Valid() {
		t.Fatalf("valid result rejected: %v", outcome.Errors)
	}
	if len(outcome.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", outcome.Warnings)
	}
}

func TestValidateBlockingErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*workflow.AnalysisResult)
		want   string
	}{
		{
			"missing primary value",
			func(r *workflow.AnalysisResult) { r.StylePrimary.Value = "" },
			"style_primary.value is required",
		},
		{
			"primary outside vocabulary",
			func(r *workflow.AnalysisResult) { r.StylePrimary.Value = "gothic" },
			"not in the controlled vocabulary",
		},
		{
			"primary confidence above one",
			func(r *workflow.AnalysisResult) { r.StylePrimary.Confidence = 1.2 },
			"outside [0,1]",
		},
		{
			"primary confidence negative",
			func(r *workflow.AnalysisResult) { r.StylePrimary.Confidence = -0.1 },
			"outside [0,1]",
		},
		{
			"sub confidence out of range",
			func(r *workflow.AnalysisResult) {
				r.StyleSub = &workflow.Classified{Value: "didone", Confidence: 2}
			},
			"style_sub.confidence",
		},
		{
			"mood confidence out of range",
			func(r *workflow.AnalysisResult) {
				r.Moods = []workflow.Tag{{Value: "warm", Confidence: 7}}
			},
			"moods[0].confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validResult()
			tt.mutate(result)

			outcome := workflow.Validate(result)
			if outcome.Valid() {
				t.Fatal("expected blocking error")
			}
			if !containsSubstring(outcome.Errors, tt.want) {
				t.Errorf("errors = %v, want one containing %q", outcome.Errors, tt.want)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*workflow.AnalysisResult)
		want   string
	}{
		{
			"sub style outside vocabulary",
			func(r *workflow.AnalysisResult) {
				r.StyleSub = &workflow.Classified{Value: "venetian", Confidence: 0.5}
			},
			"style_sub.value",
		},
		{
			"empty tag value",
			func(r *workflow.AnalysisResult) {
				r.Moods = append(r.Moods, workflow.Tag{Value: "", Confidence: 0.5})
			},
			"has empty value",
		},
		{
			"missing evidence",
			func(r *workflow.AnalysisResult) { r.StylePrimary.Evidence = nil },
			"cites no evidence",
		},
		{
			"source missing url",
			func(r *workflow.AnalysisResult) {
				r.Sources = []workflow.SourceRef{{Title: "somewhere"}}
			},
			"missing url",
		},
		{
			"no tags at all",
			func(r *workflow.AnalysisResult) {
				r.Moods = nil
				r.UseCases = nil
			},
			"no mood or use-case tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validResult()
			tt.mutate(result)

			outcome := workflow.Validate(result)
			if !outcome.Valid() {
				t.Fatalf("warning case rejected: %v", outcome.Errors)
			}
			if !containsSubstring(outcome.Warnings, tt.want) {
				t.Errorf("warnings = %v, want one containing %q", outcome.Warnings, tt.want)
			}
		})
	}
}

func TestValidateNilResult(t *testing.T) {
	outcome := workflow.Validate(nil)
	if outcome.Valid() {
		t.Fatal("nil result must be rejected")
	}
}

func TestValidateUnknownPrimary(t *testing.T) {
	result := validResult()
	result.StylePrimary.Value = workflow.Unknown
	result.StylePrimary.Evidence = nil

	outcome := workflow.Validate(result)
	if !outcome.Valid() {
		t.Fatalf("unknown primary rejected: %v", outcome.Errors)
	}
	// unknown needs no evidence; it is the honest no-guess answer
	if containsSubstring(outcome.Warnings, "cites no evidence") {
		t.Errorf("warnings = %v, unknown should not warn about evidence", outcome.Warnings)
	}
}

func TestVocabulary(t *testing.T) {
	for _, style := range workflow.PrimaryStyles() {
		if !workflow.ValidPrimaryStyle(style) {
			t.Errorf("ValidPrimaryStyle(%q) = false", style)
		}
	}
	for _, style := range workflow.SubStyles() {
		if !workflow.ValidSubStyle(style) {
			t.Errorf("ValidSubStyle(%q) = false", style)
		}
	}
	if !workflow.ValidPrimaryStyle(workflow.Unknown) {
		t.Error("unknown must be a valid primary style")
	}
	if workflow.ValidPrimaryStyle("didone") {
		t.Error("substyle didone must not pass as a primary style")
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
