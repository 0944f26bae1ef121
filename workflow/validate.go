package workflow

import "fmt"

// Outcome is the structured result of validating a stage's parsed output.
// Errors are blocking: the result is rejected and the stage yields no
// result. Warnings are log-only.
type Outcome struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the result carries no blocking errors.
func (o *Outcome) Valid() bool {
	return len(o.Errors) == 0
}

func (o *Outcome) errorf(format string, args ...any) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
}

func (o *Outcome) warnf(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a parsed analysis result against the structural schema:
// required fields, controlled vocabulary membership, and confidence ranges.
// A missing or invalid primary classification is blocking; missing optional
// fields only warn.
func Validate(result *AnalysisResult) Outcome {
	var o Outcome

	if result == nil {
		o.errorf("result is empty")
		return o
	}

	validatePrimary(&o, result)
	validateSub(&o, result)
	validateTags(&o, "moods", result.Moods)
	validateTags(&o, "use_cases", result.UseCases)
	validateSources(&o, result)

	if len(result.Moods) == 0 && len(result.UseCases) == 0 {
		o.warnf("no mood or use-case tags emitted")
	}

	return o
}

func validatePrimary(o *Outcome, result *AnalysisResult) {
	if result.StylePrimary.Value == "" {
		o.errorf("style_primary.value is required")
		return
	}
	if !ValidPrimaryStyle(result.StylePrimary.Value) {
		o.errorf("style_primary.value %q is not in the controlled vocabulary", result.StylePrimary.Value)
	}
	if !inUnitRange(result.StylePrimary.Confidence) {
		o.errorf("style_primary.confidence %v outside [0,1]", result.StylePrimary.Confidence)
	}
	if len(result.StylePrimary.Evidence) == 0 && result.StylePrimary.Value != Unknown {
		o.warnf("style_primary cites no evidence")
	}
}

func validateSub(o *Outcome, result *AnalysisResult) {
	if result.StyleSub == nil {
		return
	}
	if !ValidSubStyle(result.StyleSub.Value) {
		o.warnf("style_sub.value %q is not in the controlled vocabulary", result.StyleSub.Value)
	}
	if !inUnitRange(result.StyleSub.Confidence) {
		o.errorf("style_sub.confidence %v outside [0,1]", result.StyleSub.Confidence)
	}
}

func validateTags(o *Outcome, field string, tags []Tag) {
	for i, tag := range tags {
		if tag.Value == "" {
			o.warnf("%s[%d] has empty value", field, i)
		}
		if !inUnitRange(tag.Confidence) {
			o.errorf("%s[%d].confidence %v outside [0,1]", field, i, tag.Confidence)
		}
	}
}

func validateSources(o *Outcome, result *AnalysisResult) {
	for i, src := range result.Sources {
		if src.URL == "" {
			o.warnf("sources[%d] missing url", i)
		}
	}
}

func inUnitRange(f float64) bool {
	return f >= 0 && f <= 1
}
