package ingests_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/typevault/typevault/internal/ingests"
	"github.com/typevault/typevault/pkg/pagination"
)

// uploadSystem scripts Create outcomes per filename. Methods outside the
// upload surface are never called.
type uploadSystem struct {
	ingests.System
}

func (uploadSystem) Create(_ context.Context, cmd ingests.CreateCommand) (*ingests.UploadResult, error) {
	ingest := &ingests.Ingest{
		ID:            uuid.New(),
		Filename:      cmd.Filename,
		UploadState:   ingests.UploadUploaded,
		AnalysisState: ingests.AnalysisQueued,
	}

	switch cmd.Filename {
	case "broken.ttf":
		code := ingests.CodeParseError
		message := "font file could not be parsed"
		ingest.UploadState = ingests.UploadFailed
		ingest.AnalysisState = ingests.AnalysisNotStarted
		ingest.ErrorCode = &code
		ingest.ErrorMessage = &message
		return &ingests.UploadResult{Ingest: ingest}, nil
	case "dup.ttf":
		return &ingests.UploadResult{Ingest: ingest, Duplicate: true}, nil
	default:
		return &ingests.UploadResult{Ingest: ingest}, nil
	}
}

func batchRequest(t *testing.T, filenames ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write([]byte("font bytes"))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/ingests", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newUploadHandler() *ingests.Handler {
	return ingests.NewHandler(
		uploadSystem{},
		slog.New(slog.DiscardHandler),
		pagination.Config{DefaultPageSize: 25, MaxPageSize: 50},
		10*1024*1024,
	)
}

func TestUploadBatchSurfacesFileFailureCodes(t *testing.T) {
	rec := httptest.NewRecorder()
	newUploadHandler().Upload(rec, batchRequest(t, "broken.ttf", "dup.ttf", "inter.ttf"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var results []ingests.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	byName := make(map[string]ingests.BatchResult, len(results))
	for _, r := range results {
		byName[r.Filename] = r
	}

	if got := byName["broken.ttf"].Code; got != ingests.CodeParseError {
		t.Errorf("broken.ttf code = %q, want %q", got, ingests.CodeParseError)
	}
	if byName["broken.ttf"].Result == nil {
		t.Error("broken.ttf must still carry its failed-state ingest")
	}
	if got := byName["dup.ttf"].Code; got != ingests.CodeDuplicateDetected {
		t.Errorf("dup.ttf code = %q, want %q", got, ingests.CodeDuplicateDetected)
	}
	if got := byName["inter.ttf"].Code; got != "" {
		t.Errorf("inter.ttf code = %q, want empty", got)
	}
}
