package families

import (
	"errors"
	"net/http"
)

// Domain errors for family operations.
var (
	ErrNotFound  = errors.New("family not found")
	ErrDuplicate = errors.New("family already exists")
	ErrInvalid   = errors.New("invalid family request")
	ErrConflict  = errors.New("family style slot conflict")
	ErrNoMembers = errors.New("family has no analyzable members")
)

// MapHTTPStatus maps family domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrNoMembers):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
