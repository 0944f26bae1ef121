package workflow

import (
	"context"
	"encoding/json"

	"github.com/typevault/typevault/internal/prompts"
	"github.com/typevault/typevault/pkg/genai"
	"github.com/typevault/typevault/pkg/tunables"
)

var searchParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "Search terms, typically the family and foundry name"
		}
	},
	"required": ["query"]
}`)

// runEnrich refines a prior classification with externally sourced context.
// The model gets a search tool backed by rt.Search; backends that reject
// tool definitions fall back to a tool-free call inside the model client.
// A nil result with warnings means the stage soft-failed and the prior
// result stands.
func runEnrich(ctx context.Context, rt *Runtime, input Input, prior *AnalysisResult) (*AnalysisResult, []string, error) {
	system, err := ComposePrompt(ctx, rt.Prompts, prompts.StageEnrich)
	if err != nil {
		return nil, nil, stageErr(StageEnrich, err)
	}

	body, err := payload(struct {
		Input
		Prior *AnalysisResult `json:"prior_result"`
	}{input, prior})
	if err != nil {
		return nil, nil, stageErr(StageEnrich, err)
	}

	temperature, topP, maxTokens := sampling(rt.Tunables)

	req := genai.Request{
		Model:       tunables.String(rt.Tunables, tunables.KeyEnrichModel, "gpt-4o"),
		System:      system,
		Prompt:      body,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Schema:      classificationSchema,
	}

	if rt.Search != nil {
		req.Tools = []genai.Tool{{
			Name:        "search",
			Description: "Look up public information about a font family or foundry.",
			Parameters:  searchParameters,
		}}
		req.ToolHandler = searchHandler(rt.Search)
	}

	text, warnings, err := generate(ctx, rt, StageEnrich, req)
	if err != nil || text == "" {
		return nil, warnings, err
	}

	return parseClassification(StageEnrich, text, warnings)
}

func searchHandler(search SearchFunc) genai.ToolHandler {
	return func(ctx context.Context, name string, args json.RawMessage) (string, error) {
		var params struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return "", err
		}

		results, err := search(ctx, params.Query)
		if err != nil {
			return "", err
		}

		out, err := json.Marshal(results)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}
