package ingests_test

import (
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/typevault/typevault/internal/ingests"
)

func TestFiltersFromQuery(t *testing.T) {
	id := uuid.New()

	values := url.Values{}
	values.Set("owner", "alice")
	values.Set("upload_state", "uploaded")
	values.Set("analysis_state", "queued")
	values.Set("quarantined", "true")
	values.Set("family_id", id.String())
	values.Set("content_hash", "abc123")

	f := ingests.FiltersFromQuery(values)

	if f.Owner == nil || *f.Owner != "alice" {
		t.Errorf("owner = %v, want alice", f.Owner)
	}
	if f.UploadState == nil || *f.UploadState != ingests.UploadUploaded {
		t.Errorf("upload_state = %v, want uploaded", f.UploadState)
	}
	if f.AnalysisState == nil || *f.AnalysisState != ingests.AnalysisQueued {
		t.Errorf("analysis_state = %v, want queued", f.AnalysisState)
	}
	if f.Quarantined == nil || !*f.Quarantined {
		t.Errorf("quarantined = %v, want true", f.Quarantined)
	}
	if f.FamilyID == nil || *f.FamilyID != id {
		t.Errorf("family_id = %v, want %s", f.FamilyID, id)
	}
	if f.ContentHash == nil || *f.ContentHash != "abc123" {
		t.Errorf("content_hash = %v, want abc123", f.ContentHash)
	}
}

func TestFiltersFromQueryEmpty(t *testing.T) {
	f := ingests.FiltersFromQuery(url.Values{})

	if f.Owner != nil || f.UploadState != nil || f.AnalysisState != nil ||
		f.Quarantined != nil || f.FamilyID != nil || f.ContentHash != nil {
		t.Errorf("empty query produced non-empty filters: %+v", f)
	}
}

func TestFiltersFromQueryInvalidValues(t *testing.T) {
	values := url.Values{}
	values.Set("quarantined", "maybe")
	values.Set("family_id", "not-a-uuid")

	f := ingests.FiltersFromQuery(values)

	if f.Quarantined != nil {
		t.Errorf("unparseable quarantined should be ignored, got %v", *f.Quarantined)
	}
	if f.FamilyID != nil {
		t.Errorf("unparseable family_id should be ignored, got %v", *f.FamilyID)
	}
}
