package ingests

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "ingests", "i").
	Project("id", "ID").
	Project("owner", "Owner").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("quick_hash", "QuickHash").
	Project("content_hash", "ContentHash").
	Project("storage_key", "StorageKey").
	Project("metadata", "Metadata").
	Project("family_id", "FamilyID").
	Project("upload_state", "UploadState").
	Project("analysis_state", "AnalysisState").
	Project("quarantined", "Quarantined").
	Project("resolution", "Resolution").
	Project("resolved_at", "ResolvedAt").
	Project("error_code", "ErrorCode").
	Project("error_message", "ErrorMessage").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "created_at",
	Descending: true,
}

// Filters contains optional filtering criteria for ingest queries.
// Nil fields are ignored.
type Filters struct {
	Owner         *string        `json:"owner,omitempty"`
	UploadState   *UploadState   `json:"upload_state,omitempty"`
	AnalysisState *AnalysisState `json:"analysis_state,omitempty"`
	Quarantined   *bool          `json:"quarantined,omitempty"`
	FamilyID      *uuid.UUID     `json:"family_id,omitempty"`
	ContentHash   *string        `json:"content_hash,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Owner", f.Owner).
		WhereEquals("UploadState", f.UploadState).
		WhereEquals("AnalysisState", f.AnalysisState).
		WhereEquals("Quarantined", f.Quarantined).
		WhereEquals("FamilyID", f.FamilyID).
		WhereEquals("ContentHash", f.ContentHash)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("owner"); v != "" {
		f.Owner = &v
	}

	if v := values.Get("upload_state"); v != "" {
		state := UploadState(v)
		f.UploadState = &state
	}

	if v := values.Get("analysis_state"); v != "" {
		state := AnalysisState(v)
		f.AnalysisState = &state
	}

	if v := values.Get("quarantined"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Quarantined = &b
		}
	}

	if v := values.Get("family_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.FamilyID = &id
		}
	}

	if v := values.Get("content_hash"); v != "" {
		f.ContentHash = &v
	}

	return f
}

func scanIngest(s repository.Scanner) (Ingest, error) {
	var (
		i        Ingest
		metadata []byte
	)

	err := s.Scan(
		&i.ID,
		&i.Owner,
		&i.Filename,
		&i.ContentType,
		&i.SizeBytes,
		&i.QuickHash,
		&i.ContentHash,
		&i.StorageKey,
		&metadata,
		&i.FamilyID,
		&i.UploadState,
		&i.AnalysisState,
		&i.Quarantined,
		&i.Resolution,
		&i.ResolvedAt,
		&i.ErrorCode,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return i, err
	}

	if len(metadata) > 0 {
		var md fontparse.Metadata
		if err := json.Unmarshal(metadata, &md); err != nil {
			return i, err
		}
		i.Metadata = &md
	}

	return i, nil
}
