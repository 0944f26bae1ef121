package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/typevault/typevault/internal/prompts"
	"github.com/typevault/typevault/pkg/formatting"
	"github.com/typevault/typevault/pkg/genai"
	"github.com/typevault/typevault/pkg/tunables"
)

// maxDescriptionWords caps the marketing description length. Output over
// the cap is clamped rather than rejected.
const maxDescriptionWords = 50

// runSummarize produces the catalog description from a validated result.
// An empty description with warnings means the stage soft-failed; the
// classification is still persisted without one.
func runSummarize(ctx context.Context, rt *Runtime, input Input, result *AnalysisResult) (string, []string, error) {
	system, err := ComposePrompt(ctx, rt.Prompts, prompts.StageSummarize)
	if err != nil {
		return "", nil, stageErr(StageSummarize, err)
	}

	body, err := payload(struct {
		Family string          `json:"family"`
		Result *AnalysisResult `json:"result"`
	}{input.Family, result})
	if err != nil {
		return "", nil, stageErr(StageSummarize, err)
	}

	temperature, topP, maxTokens := sampling(rt.Tunables)

	text, warnings, err := generate(ctx, rt, StageSummarize, genai.Request{
		Model:       tunables.String(rt.Tunables, tunables.KeySummaryModel, "gpt-4o-mini"),
		System:      system,
		Prompt:      body,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Schema:      summarySchema,
	})
	if err != nil || text == "" {
		return "", warnings, err
	}

	parsed, perr := formatting.Parse[struct {
		Description string `json:"description"`
	}](text)
	if perr != nil {
		return "", append(warnings, fmt.Sprintf("summarize output unparseable: %v", perr)), nil
	}

	description := strings.TrimSpace(parsed.Description)
	if description == "" {
		return "", append(warnings, "summarize produced an empty description"), nil
	}

	if words := strings.Fields(description); len(words) > maxDescriptionWords {
		description = strings.Join(words[:maxDescriptionWords], " ")
		warnings = append(warnings, fmt.Sprintf("description clamped to %d words", maxDescriptionWords))
	}

	return description, warnings, nil
}
