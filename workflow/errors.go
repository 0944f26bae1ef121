// Package workflow implements the generative analysis pipeline for font
// families. It provides the stage types, deterministic foundational-facts
// derivation, output validation, and the three-stage orchestration of
// visual, enrich, and summarize.
package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	// ErrAnalysisDisabled signals that analysis is switched off entirely;
	// callers leave the analysis lane at not_started and make no model call.
	ErrAnalysisDisabled = errors.New("analysis disabled by configuration")

	// ErrNoResult signals that every stage soft-failed and no validated
	// result is available. The ingest degrades to incomplete, not failed.
	ErrNoResult = errors.New("analysis produced no result")
)

// AnalysisError wraps a terminal stage failure with the stage that raised it.
type AnalysisError struct {
	Stage Stage
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis stage %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &AnalysisError{Stage: stage, Err: err}
}
