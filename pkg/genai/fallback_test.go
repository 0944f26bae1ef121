package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestStrategiesWithoutTools(t *testing.T) {
	req := Request{Model: "m", Prompt: "p"}

	variants := strategies(req)
	if len(variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(variants))
	}
	if variants[0].continueOn(errors.New("any")) {
		t.Error("tool-free request must never fall through")
	}
}

func TestStrategiesWithTools(t *testing.T) {
	req := Request{
		Model: "m",
		Tools: []Tool{{Name: "search", Parameters: json.RawMessage(`{}`)}},
		ToolHandler: func(_ context.Context, name string, args json.RawMessage) (string, error) {
			return "", nil
		},
	}

	variants := strategies(req)
	if len(variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(variants))
	}

	t.Run("full variant falls through only on tool rejection", func(t *testing.T) {
		full := variants[0]
		if !full.continueOn(fmt.Errorf("wrapped: %w", ErrToolsRejected)) {
			t.Error("tool rejection must fall through to the stripped variant")
		}
		if full.continueOn(ErrModelRejected) {
			t.Error("non-tool rejection must propagate")
		}
	})

	t.Run("stripped variant carries no tools", func(t *testing.T) {
		stripped := variants[1]
		if len(stripped.req.Tools) != 0 || stripped.req.ToolHandler != nil {
			t.Error("fallback variant must strip tools and handler")
		}
		if stripped.continueOn(ErrToolsRejected) {
			t.Error("last variant must never fall through")
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, ErrModelRequest},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, ErrModelRequest},
		{"tools unsupported", &openai.APIError{HTTPStatusCode: 400, Message: "tools are not supported"}, ErrToolsRejected},
		{"functions unsupported", &openai.APIError{HTTPStatusCode: 400, Message: "unknown parameter: functions"}, ErrToolsRejected},
		{"content filter", &openai.APIError{HTTPStatusCode: 400, Code: "content_filter"}, ErrSafetyBlocked},
		{"plain bad request", &openai.APIError{HTTPStatusCode: 400, Message: "invalid model"}, ErrModelRejected},
		{"network failure", &net.DNSError{Err: "no such host"}, ErrModelRequest},
		{"unknown failure treated transient", errors.New("connection reset"), ErrModelRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("Classify must preserve the original error")
			}
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		if Classify(nil) != nil {
			t.Error("Classify(nil) must be nil")
		}
	})
}

func TestRetryable(t *testing.T) {
	if !Retryable(Classify(&openai.APIError{HTTPStatusCode: 500})) {
		t.Error("server errors must be retryable")
	}
	if Retryable(Classify(&openai.APIError{HTTPStatusCode: 400, Message: "bad schema"})) {
		t.Error("terminal rejections must not be retryable")
	}
}
