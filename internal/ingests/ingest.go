// Package ingests implements the ingest domain: the tracked unit of work
// for one uploaded font file moving through upload, deduplication, and
// analysis. It provides types, the two-lane state machine, data access,
// and HTTP handlers.
package ingests

import (
	"time"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/fontparse"
)

// Ingest tracks one uploaded font file through the system. The upload and
// analysis lanes advance independently; analysisState only leaves
// not_started once uploadState has reached uploaded.
type Ingest struct {
	ID            uuid.UUID           `json:"id"`
	Owner         *string             `json:"owner"`
	Filename      string              `json:"filename"`
	ContentType   string              `json:"content_type"`
	SizeBytes     int64               `json:"size_bytes"`
	QuickHash     string              `json:"quick_hash"`
	ContentHash   string              `json:"content_hash"`
	StorageKey    string              `json:"storage_key"`
	Metadata      *fontparse.Metadata `json:"metadata,omitempty"`
	FamilyID      *uuid.UUID          `json:"family_id"`
	UploadState   UploadState         `json:"upload_state"`
	AnalysisState AnalysisState       `json:"analysis_state"`
	Quarantined   bool                `json:"quarantined"`
	Resolution    *string             `json:"resolution"`
	ResolvedAt    *time.Time          `json:"resolved_at"`
	ErrorCode     *string             `json:"error_code"`
	ErrorMessage  *string             `json:"error_message"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Status returns the combined display status derived from both lanes.
func (i *Ingest) Status() Status {
	return CombinedStatus(i.UploadState, i.AnalysisState)
}

// Terminal reports whether the ingest holds no further work: both lanes
// are terminal, or the upload ended without ever handing off to analysis.
func (i *Ingest) Terminal() bool {
	if !i.UploadState.Terminal() {
		return false
	}
	if i.UploadState != UploadUploaded {
		return i.AnalysisState == AnalysisNotStarted || i.AnalysisState.Terminal()
	}
	return i.AnalysisState.Terminal()
}

// CreateCommand carries the data needed to register and store a new upload.
// ClientQuickHash and ClientContentHash are optional client-computed values;
// the server recomputes both and its values win on mismatch.
type CreateCommand struct {
	Data              []byte
	Filename          string
	ContentType       string
	Owner             *string
	ClientQuickHash   string
	ClientContentHash string
}

// UploadResult reports the outcome of one upload. Duplicate is set when the
// content hash was already owned; Ingest then refers to the existing record
// and no new blob or row was written.
type UploadResult struct {
	Ingest    *Ingest `json:"ingest"`
	Duplicate bool    `json:"duplicate"`
	Warning   string  `json:"warning,omitempty"`
}

// BatchResult reports the outcome of a single file within a batch upload.
// File-level failures never abort the rest of the batch.
type BatchResult struct {
	Filename string        `json:"filename"`
	Result   *UploadResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	Code     string        `json:"code,omitempty"`
}
