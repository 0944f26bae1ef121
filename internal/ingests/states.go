package ingests

import "fmt"

// UploadState is the upload lane of the ingest state machine.
type UploadState string

// Upload lane states.
const (
	UploadPending   UploadState = "pending"
	UploadHashing   UploadState = "hashing"
	UploadUploading UploadState = "uploading"
	UploadPaused    UploadState = "paused"
	UploadRetrying  UploadState = "retrying"
	UploadResumed   UploadState = "resumed"
	UploadUploaded  UploadState = "uploaded"
	UploadVerifying UploadState = "verifying"
	UploadFailed    UploadState = "failed"
	UploadCanceled  UploadState = "canceled"
)

// AnalysisState is the analysis lane of the ingest state machine.
type AnalysisState string

// Analysis lane states.
const (
	AnalysisNotStarted  AnalysisState = "not_started"
	AnalysisQueued      AnalysisState = "queued"
	AnalysisAnalyzing   AnalysisState = "analyzing"
	AnalysisEnriching   AnalysisState = "enriching"
	AnalysisComplete    AnalysisState = "complete"
	AnalysisError       AnalysisState = "error"
	AnalysisRetrying    AnalysisState = "retrying"
	AnalysisQuarantined AnalysisState = "quarantined"
)

// uploadTransitions enumerates the allowed upload lane transitions.
// Absent states are terminal.
var uploadTransitions = map[UploadState][]UploadState{
	UploadPending:   {UploadHashing, UploadUploading, UploadFailed, UploadCanceled},
	UploadHashing:   {UploadUploading, UploadFailed, UploadCanceled},
	UploadUploading: {UploadPaused, UploadRetrying, UploadVerifying, UploadUploaded, UploadFailed, UploadCanceled},
	UploadPaused:    {UploadResumed, UploadCanceled},
	UploadResumed:   {UploadUploading, UploadFailed, UploadCanceled},
	UploadRetrying:  {UploadUploading, UploadFailed, UploadCanceled},
	UploadVerifying: {UploadUploaded, UploadFailed},
}

// analysisTransitions enumerates the allowed analysis lane transitions.
// Quarantined and error leave through explicit re-queue only; complete is
// terminal.
var analysisTransitions = map[AnalysisState][]AnalysisState{
	AnalysisNotStarted:  {AnalysisQueued},
	AnalysisQueued:      {AnalysisAnalyzing, AnalysisQuarantined, AnalysisError},
	AnalysisAnalyzing:   {AnalysisEnriching, AnalysisComplete, AnalysisError, AnalysisRetrying, AnalysisQuarantined},
	AnalysisEnriching:   {AnalysisComplete, AnalysisError, AnalysisRetrying, AnalysisQuarantined},
	AnalysisRetrying:    {AnalysisAnalyzing, AnalysisError},
	AnalysisError:       {AnalysisQueued},
	AnalysisQuarantined: {AnalysisQueued},
}

// CanTransition reports whether the upload lane may move from s to next.
func (s UploadState) CanTransition(next UploadState) bool {
	for _, allowed := range uploadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the upload lane holds no further work.
func (s UploadState) Terminal() bool {
	switch s {
	case UploadUploaded, UploadFailed, UploadCanceled:
		return true
	}
	return false
}

// CanTransition reports whether the analysis lane may move from s to next.
func (s AnalysisState) CanTransition(next AnalysisState) bool {
	for _, allowed := range analysisTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the analysis lane holds no further work without
// an explicit re-queue.
func (s AnalysisState) Terminal() bool {
	switch s {
	case AnalysisComplete, AnalysisError, AnalysisQuarantined:
		return true
	}
	return false
}

// Priority tags a combined status for display emphasis.
type Priority string

// Status priorities, ordered from most to least urgent.
const (
	PriorityError   Priority = "error"
	PriorityWarning Priority = "warning"
	PriorityActive  Priority = "active"
	PriorityOK      Priority = "ok"
)

// Status is the single display status derived from both state lanes.
type Status struct {
	Display  string   `json:"display"`
	Priority Priority `json:"priority"`
}

// CombinedStatus derives the display status for any pair of lane states.
// It is pure and total: every pair maps to exactly one status. Precedence,
// highest first: upload problems mask analysis entirely; then analysis
// problems; then completion; then analysis progress; then upload progress.
func CombinedStatus(upload UploadState, analysis AnalysisState) Status {
	switch upload {
	case UploadFailed:
		return Status{Display: "Upload failed", Priority: PriorityError}
	case UploadCanceled:
		return Status{Display: "Upload canceled", Priority: PriorityWarning}
	}

	if upload == UploadUploaded {
		switch analysis {
		case AnalysisError:
			return Status{Display: "Analysis failed", Priority: PriorityError}
		case AnalysisQuarantined:
			return Status{Display: "Quarantined", Priority: PriorityWarning}
		case AnalysisComplete:
			return Status{Display: "Complete", Priority: PriorityOK}
		case AnalysisNotStarted:
			return Status{Display: "Ready", Priority: PriorityActive}
		default:
			return Status{
				Display:  fmt.Sprintf("Ready (Analysis: %s)", analysis),
				Priority: PriorityActive,
			}
		}
	}

	if analysis == AnalysisNotStarted {
		return Status{
			Display:  fmt.Sprintf("Processing (Upload: %s)", upload),
			Priority: PriorityActive,
		}
	}

	return Status{
		Display:  fmt.Sprintf("Processing (Upload: %s, Analysis: %s)", upload, analysis),
		Priority: PriorityActive,
	}
}
