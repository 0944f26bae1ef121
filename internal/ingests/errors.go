package ingests

import (
	"errors"
	"net/http"
)

// Domain errors for ingest operations.
var (
	ErrNotFound          = errors.New("ingest not found")
	ErrDuplicate         = errors.New("ingest already exists")
	ErrInvalidFile       = errors.New("invalid upload request")
	ErrFileTooLarge      = errors.New("file exceeds upload size limit")
	ErrParse             = errors.New("font file could not be parsed")
	ErrInvalidTransition = errors.New("state transition not allowed")
	ErrNotQuarantined    = errors.New("ingest is not quarantined")
	ErrStore             = errors.New("object store unavailable")
)

// Machine-readable error codes persisted on the ingest record and returned
// to clients alongside the human-readable message.
const (
	CodeParseError        = "PARSE_ERROR"
	CodeDuplicateDetected = "DUPLICATE_DETECTED"
	CodeConflictDetected  = "CONFLICT_DETECTED"
	CodeStoreFailure      = "STORE_FAILURE"
	CodeAnalysisFailure   = "ANALYSIS_FAILURE"
)

// MapHTTPStatus maps ingest domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotQuarantined):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFile), errors.Is(err, ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrStore):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
