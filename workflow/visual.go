package workflow

import (
	"context"
	"fmt"

	"github.com/typevault/typevault/internal/prompts"
	"github.com/typevault/typevault/pkg/formatting"
	"github.com/typevault/typevault/pkg/genai"
	"github.com/typevault/typevault/pkg/tunables"
)

// runVisual classifies the family from file evidence alone: name table
// entries, OS/2 data, axes, feature tags, and any measured metrics. A nil
// result with warnings means the stage soft-failed.
func runVisual(ctx context.Context, rt *Runtime, input Input, facts *FoundationalFacts) (*AnalysisResult, []string, error) {
	system, err := ComposePrompt(ctx, rt.Prompts, prompts.StageVisual)
	if err != nil {
		return nil, nil, stageErr(StageVisual, err)
	}

	body, err := payload(struct {
		Input
		Facts *FoundationalFacts `json:"facts"`
	}{input, facts})
	if err != nil {
		return nil, nil, stageErr(StageVisual, err)
	}

	temperature, topP, maxTokens := sampling(rt.Tunables)

	text, warnings, err := generate(ctx, rt, StageVisual, genai.Request{
		Model:       tunables.String(rt.Tunables, tunables.KeyVisualModel, "gpt-4o-mini"),
		System:      system,
		Prompt:      body,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Schema:      classificationSchema,
	})
	if err != nil || text == "" {
		return nil, warnings, err
	}

	return parseClassification(StageVisual, text, warnings)
}

// parseClassification parses and validates untrusted model output for a
// classification stage. Parse failures and blocking validation errors
// soft-fail the stage.
func parseClassification(stage Stage, text string, warnings []string) (*AnalysisResult, []string, error) {
	result, err := formatting.Parse[AnalysisResult](text)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("%s output unparseable: %v", stage, err)), nil
	}

	outcome := Validate(&result)
	warnings = append(warnings, outcome.Warnings...)
	if !outcome.Valid() {
		for _, msg := range outcome.Errors {
			warnings = append(warnings, fmt.Sprintf("%s output rejected: %s", stage, msg))
		}
		return nil, warnings, nil
	}

	return &result, warnings, nil
}
