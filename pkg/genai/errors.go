package genai

import (
	"errors"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Error classes for model calls. Request errors are transient and retried
// with backoff; rejected errors are terminal and propagate to the caller.
var (
	ErrModelRequest  = errors.New("model request failed")
	ErrModelRejected = errors.New("model rejected request")
	ErrToolsRejected = errors.New("model rejected tool use")
	ErrSafetyBlocked = errors.New("model blocked request")
)

// Classify maps a raw transport error onto the genai error taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return errors.Join(ErrModelRequest, err)
		case apiErr.HTTPStatusCode == 400 && mentionsTools(apiErr.Message):
			return errors.Join(ErrToolsRejected, err)
		case apiErr.Code == "content_filter" || apiErr.Type == "content_filter":
			return errors.Join(ErrSafetyBlocked, err)
		default:
			return errors.Join(ErrModelRejected, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errors.Join(ErrModelRequest, err)
	}

	// unknown transport failures are treated as transient
	return errors.Join(ErrModelRequest, err)
}

// Retryable reports whether the classified error warrants another attempt
// of the same call variant.
func Retryable(err error) bool {
	return errors.Is(err, ErrModelRequest)
}

func mentionsTools(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "tool") || strings.Contains(msg, "function")
}
