package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/typevault/typevault/internal/prompts"
	"github.com/typevault/typevault/pkg/genai"
	"github.com/typevault/typevault/pkg/metrics"
	"github.com/typevault/typevault/pkg/tunables"
)

// SearchResult is one hit returned by the external lookup used during the
// enrich stage.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchFunc performs an external lookup for the enrich stage's search tool.
// A nil SearchFunc disables the tool; enrichment then runs on the model's
// own knowledge.
type SearchFunc func(ctx context.Context, query string) ([]SearchResult, error)

// Runtime bundles the dependencies the pipeline stages require. It is
// constructed by higher-level composition code from infrastructure systems.
type Runtime struct {
	Model    genai.Client
	Prompts  prompts.System
	Tunables tunables.Provider
	Search   SearchFunc
	Logger   *slog.Logger

	// Progress, when set, is invoked as each stage begins. Callers use it
	// to mirror pipeline progress onto externally visible state.
	Progress func(Stage)
}

func (rt *Runtime) progress(stage Stage) {
	if rt.Progress != nil {
		rt.Progress(stage)
	}
}

// Run executes the analysis pipeline for one family: deterministic fact
// derivation, then visual classification, optional enrichment, and optional
// summarization.
//
// Stage degradation is deliberate: a stage whose output cannot be parsed or
// validated soft-fails, and the pipeline continues with the best prior
// result. Transport failures that survive the retry policy are hard errors.
// When analysis is disabled entirely, Run returns ErrAnalysisDisabled
// without any model call; when every stage soft-fails, it returns the stage
// reports alongside ErrNoResult.
func Run(ctx context.Context, rt *Runtime, input Input) (*Output, error) {
	if !tunables.Bool(rt.Tunables, tunables.KeyAIEnabled, true) {
		return nil, ErrAnalysisDisabled
	}

	logger := rt.Logger.With("system", "workflow", "family", input.Family)
	facts := DeriveFacts(input.Metadata, tunables.LoadOptical(rt.Tunables))

	out := &Output{}

	rt.progress(StageVisual)
	result, warnings, err := runVisual(ctx, rt, input, facts)
	out.report(StageVisual, true, result != nil, warnings)
	if err != nil {
		return nil, err
	}

	if tunables.Bool(rt.Tunables, tunables.KeyEnrichEnabled, true) && result != nil {
		rt.progress(StageEnrich)
		enriched, warnings, err := runEnrich(ctx, rt, input, result)
		out.report(StageEnrich, true, enriched != nil, warnings)
		if err != nil {
			return nil, err
		}
		if enriched != nil {
			result = enriched
		}
	} else {
		out.report(StageEnrich, false, false, nil)
	}

	if result == nil {
		logger.WarnContext(ctx, "analysis produced no validated result")
		return out, ErrNoResult
	}

	result.Facts = facts
	result.ConfidenceBand = tunables.LoadBands(rt.Tunables).Classify(result.StylePrimary.Confidence)
	out.Result = result

	if tunables.Bool(rt.Tunables, tunables.KeySummaryEnabled, true) {
		rt.progress(StageSummarize)
		description, warnings, err := runSummarize(ctx, rt, input, result)
		out.report(StageSummarize, true, description != "", warnings)
		if err != nil {
			return nil, err
		}
		out.Description = description
	} else {
		out.report(StageSummarize, false, false, nil)
	}

	logger.InfoContext(
		ctx, "analysis complete",
		"style", result.StylePrimary.Value,
		"band", result.ConfidenceBand,
		"described", out.Description != "",
	)

	return out, nil
}

func (o *Output) report(stage Stage, ran, produced bool, warnings []string) {
	o.Stages = append(o.Stages, StageReport{
		Stage:    stage,
		Ran:      ran,
		Produced: produced,
		Warnings: warnings,
	})

	outcome := "skipped"
	switch {
	case produced:
		outcome = "ok"
	case ran:
		outcome = "degraded"
	}
	metrics.AnalysisStages.WithLabelValues(string(stage), outcome).Inc()
}

// generate runs one model call for a stage and classifies the failure mode.
// Transport exhaustion and cancellation are hard errors; every other model
// failure soft-fails so the pipeline can degrade.
func generate(ctx context.Context, rt *Runtime, stage Stage, req genai.Request) (string, []string, error) {
	resp, err := rt.Model.Generate(ctx, req)
	if err == nil {
		return resp.Text, nil, nil
	}

	if ctx.Err() != nil {
		return "", nil, stageErr(stage, ctx.Err())
	}
	if errors.Is(err, genai.ErrModelRequest) {
		return "", nil, stageErr(stage, err)
	}

	rt.Logger.WarnContext(
		ctx, "stage degraded on model failure",
		"stage", stage,
		"error", err,
	)
	return "", []string{err.Error()}, nil
}

func sampling(p tunables.Provider) (temperature, topP float32, maxTokens int) {
	temperature = float32(tunables.Float(p, tunables.KeyTemperature, 0.2))
	topP = float32(tunables.Float(p, tunables.KeyTopP, 1.0))
	maxTokens = tunables.Int(p, tunables.KeyMaxTokens, 2048)
	return temperature, topP, maxTokens
}
