package ingests_test

import (
	"testing"

	"github.com/typevault/typevault/internal/ingests"
)

var allUploadStates = []ingests.UploadState{
	ingests.UploadPending,
	ingests.UploadHashing,
	ingests.UploadUploading,
	ingests.UploadPaused,
	ingests.UploadRetrying,
	ingests.UploadResumed,
	ingests.UploadUploaded,
	ingests.UploadVerifying,
	ingests.UploadFailed,
	ingests.UploadCanceled,
}

var allAnalysisStates = []ingests.AnalysisState{
	ingests.AnalysisNotStarted,
	ingests.AnalysisQueued,
	ingests.AnalysisAnalyzing,
	ingests.AnalysisEnriching,
	ingests.AnalysisComplete,
	ingests.AnalysisError,
	ingests.AnalysisRetrying,
	ingests.AnalysisQuarantined,
}

func TestCombinedStatusTotal(t *testing.T) {
	for _, upload := range allUploadStates {
		for _, analysis := range allAnalysisStates {
			status := ingests.CombinedStatus(upload, analysis)
			if status.Display == "" {
				t.Errorf("CombinedStatus(%s, %s) has empty display", upload, analysis)
			}
			if status.Priority == "" {
				t.Errorf("CombinedStatus(%s, %s) has empty priority", upload, analysis)
			}
		}
	}
}

func TestCombinedStatusPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		upload   ingests.UploadState
		analysis ingests.AnalysisState
		display  string
		priority ingests.Priority
	}{
		{"upload failure masks analysis", ingests.UploadFailed, ingests.AnalysisComplete, "Upload failed", ingests.PriorityError},
		{"upload failure masks analysis error", ingests.UploadFailed, ingests.AnalysisError, "Upload failed", ingests.PriorityError},
		{"cancellation masks analysis", ingests.UploadCanceled, ingests.AnalysisQueued, "Upload canceled", ingests.PriorityWarning},
		{"analysis error after upload", ingests.UploadUploaded, ingests.AnalysisError, "Analysis failed", ingests.PriorityError},
		{"quarantine after upload", ingests.UploadUploaded, ingests.AnalysisQuarantined, "Quarantined", ingests.PriorityWarning},
		{"both lanes done", ingests.UploadUploaded, ingests.AnalysisComplete, "Complete", ingests.PriorityOK},
		{"uploaded before analysis", ingests.UploadUploaded, ingests.AnalysisNotStarted, "Ready", ingests.PriorityActive},
		{"uploaded with analysis running", ingests.UploadUploaded, ingests.AnalysisAnalyzing, "Ready (Analysis: analyzing)", ingests.PriorityActive},
		{"upload in flight", ingests.UploadUploading, ingests.AnalysisNotStarted, "Processing (Upload: uploading)", ingests.PriorityActive},
		{"both lanes in flight", ingests.UploadVerifying, ingests.AnalysisQueued, "Processing (Upload: verifying, Analysis: queued)", ingests.PriorityActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ingests.CombinedStatus(tt.upload, tt.analysis)
			if status.Display != tt.display {
				t.Errorf("display = %q, want %q", status.Display, tt.display)
			}
			if status.Priority != tt.priority {
				t.Errorf("priority = %q, want %q", status.Priority, tt.priority)
			}
		})
	}
}

func TestUploadTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ingests.UploadState
		to      ingests.UploadState
		allowed bool
	}{
		{"pending to hashing", ingests.UploadPending, ingests.UploadHashing, true},
		{"hashing to uploading", ingests.UploadHashing, ingests.UploadUploading, true},
		{"uploading to paused", ingests.UploadUploading, ingests.UploadPaused, true},
		{"paused to resumed", ingests.UploadPaused, ingests.UploadResumed, true},
		{"resumed to uploading", ingests.UploadResumed, ingests.UploadUploading, true},
		{"uploading to verifying", ingests.UploadUploading, ingests.UploadVerifying, true},
		{"verifying to uploaded", ingests.UploadVerifying, ingests.UploadUploaded, true},
		{"paused to cancel", ingests.UploadPaused, ingests.UploadCanceled, true},
		{"paused cannot upload directly", ingests.UploadPaused, ingests.UploadUploading, false},
		{"uploaded is terminal", ingests.UploadUploaded, ingests.UploadUploading, false},
		{"failed is terminal", ingests.UploadFailed, ingests.UploadRetrying, false},
		{"canceled is terminal", ingests.UploadCanceled, ingests.UploadPending, false},
		{"no skipping to uploaded", ingests.UploadPending, ingests.UploadUploaded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestAnalysisTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ingests.AnalysisState
		to      ingests.AnalysisState
		allowed bool
	}{
		{"not started to queued", ingests.AnalysisNotStarted, ingests.AnalysisQueued, true},
		{"queued to analyzing", ingests.AnalysisQueued, ingests.AnalysisAnalyzing, true},
		{"analyzing to enriching", ingests.AnalysisAnalyzing, ingests.AnalysisEnriching, true},
		{"enriching to complete", ingests.AnalysisEnriching, ingests.AnalysisComplete, true},
		{"analyzing straight to complete", ingests.AnalysisAnalyzing, ingests.AnalysisComplete, true},
		{"error re-queues", ingests.AnalysisError, ingests.AnalysisQueued, true},
		{"quarantine re-queues", ingests.AnalysisQuarantined, ingests.AnalysisQueued, true},
		{"complete is terminal", ingests.AnalysisComplete, ingests.AnalysisQueued, false},
		{"error cannot jump to analyzing", ingests.AnalysisError, ingests.AnalysisAnalyzing, false},
		{"no skipping to complete from queued", ingests.AnalysisQueued, ingests.AnalysisComplete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	uploadTerminal := map[ingests.UploadState]bool{
		ingests.UploadUploaded: true,
		ingests.UploadFailed:   true,
		ingests.UploadCanceled: true,
	}
	for _, state := range allUploadStates {
		if got := state.Terminal(); got != uploadTerminal[state] {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, uploadTerminal[state])
		}
	}

	analysisTerminal := map[ingests.AnalysisState]bool{
		ingests.AnalysisComplete:    true,
		ingests.AnalysisError:       true,
		ingests.AnalysisQuarantined: true,
	}
	for _, state := range allAnalysisStates {
		if got := state.Terminal(); got != analysisTerminal[state] {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, analysisTerminal[state])
		}
	}
}

func TestIngestTerminal(t *testing.T) {
	tests := []struct {
		name     string
		upload   ingests.UploadState
		analysis ingests.AnalysisState
		want     bool
	}{
		{"complete pair", ingests.UploadUploaded, ingests.AnalysisComplete, true},
		{"failed upload never analyzed", ingests.UploadFailed, ingests.AnalysisNotStarted, true},
		{"canceled upload never analyzed", ingests.UploadCanceled, ingests.AnalysisNotStarted, true},
		{"uploaded but analysis pending", ingests.UploadUploaded, ingests.AnalysisQueued, false},
		{"upload still running", ingests.UploadUploading, ingests.AnalysisNotStarted, false},
		{"uploaded and quarantined", ingests.UploadUploaded, ingests.AnalysisQuarantined, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest := ingests.Ingest{UploadState: tt.upload, AnalysisState: tt.analysis}
			if got := ingest.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
