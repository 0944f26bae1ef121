package ingests

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/routes"
)

// Handler provides HTTP endpoints for ingest operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// ResolveRequest carries the chosen resolution policy for a quarantined ingest.
type ResolveRequest struct {
	Policy string `json:"policy"`
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "ingests"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for ingest endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/ingests",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/status", Handler: h.Status},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/{id}/pause", Handler: h.Pause},
			{Method: "POST", Pattern: "/{id}/resume", Handler: h.Resume},
			{Method: "POST", Pattern: "/{id}/cancel", Handler: h.Cancel},
			{Method: "POST", Pattern: "/{id}/resolve", Handler: h.Resolve},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of ingests with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single ingest by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ingest, ok := h.find(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ingest)
}

// Status returns only the combined display status for an ingest, for cheap
// polling by clients.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ingest, ok := h.find(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, struct {
		Status   Status `json:"status"`
		Terminal bool   `json:"terminal"`
	}{ingest.Status(), ingest.Terminal()})
}

// Search accepts a JSON body with pagination and filter criteria and returns
// matching ingests.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload processes a multipart form containing one or more font files.
// A single "file" part responds with one UploadResult; a "files" batch
// responds with per-file results, and no file-level failure aborts the rest
// of the batch.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	var owner *string
	if v := strings.TrimSpace(r.FormValue("owner")); v != "" {
		owner = &v
	}

	if batch := r.MultipartForm.File["files"]; len(batch) > 0 {
		results := make([]BatchResult, 0, len(batch))
		for _, header := range batch {
			results = append(results, h.uploadOne(r, header, owner))
		}
		handlers.RespondJSON(w, http.StatusOK, results)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	result, err := h.sys.Create(r.Context(), CreateCommand{
		Data:              data,
		Filename:          header.Filename,
		ContentType:       detectContentType(header.Header.Get("Content-Type"), data),
		Owner:             owner,
		ClientQuickHash:   r.FormValue("quick_hash"),
		ClientContentHash: r.FormValue("content_hash"),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	handlers.RespondJSON(w, status, result)
}

func (h *Handler) uploadOne(r *http.Request, header *multipart.FileHeader, owner *string) BatchResult {
	out := BatchResult{Filename: header.Filename}

	file, err := header.Open()
	if err != nil {
		out.Error = err.Error()
		return out
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	result, err := h.sys.Create(r.Context(), CreateCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Owner:       owner,
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	// Create converts file-level failures (unparseable font, store
	// errors) into a failed-state ingest rather than an error; surface
	// that code on the batch entry.
	out.Result = result
	switch {
	case result.Duplicate:
		out.Code = CodeDuplicateDetected
	case result.Ingest.ErrorCode != nil:
		out.Code = *result.Ingest.ErrorCode
	}
	return out
}

// Pause suspends an in-flight upload.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.laneControl(w, r, h.sys.Pause)
}

// Resume releases a paused upload.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.laneControl(w, r, h.sys.Resume)
}

// Cancel aborts an in-flight upload. A canceled upload never reaches the
// analysis queue.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.laneControl(w, r, h.sys.Cancel)
}

// Resolve releases a quarantined ingest back to the analysis queue with the
// chosen resolution policy.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	ingest, err := h.sys.Resolve(r.Context(), id, req.Policy)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ingest)
}

// Delete removes an ingest by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) (*Ingest, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return nil, false
	}

	ingest, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	return ingest, true
}

func (h *Handler) laneControl(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*Ingest, error),
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	ingest, err := op(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ingest)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
