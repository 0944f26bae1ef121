// Package genai wraps the generative model service behind a single Generate
// call with bounded exponential backoff and an inspectable fallback policy.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/typevault/typevault/pkg/metrics"
	"github.com/typevault/typevault/pkg/tunables"
)

const maxToolRounds = 3

// Schema constrains the model's response to a named JSON schema.
type Schema struct {
	Name       string
	Definition json.RawMessage
}

// Tool exposes one callable function to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolHandler executes a tool call requested by the model and returns the
// result text fed back into the conversation.
type ToolHandler func(ctx context.Context, name string, args json.RawMessage) (string, error)

// Request describes one generation call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	TopP        float32
	MaxTokens   int
	Schema      *Schema
	Tools       []Tool
	ToolHandler ToolHandler
}

// Usage summarizes token consumption for one call. It is logged for cost
// observability and never blocks the pipeline.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the raw model output plus usage metadata. Text is untrusted
// and must be parsed and validated by the caller.
type Response struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Client is the model service contract consumed by pipeline stages.
type Client interface {
	// Generate runs one generation request through the retry and fallback
	// policy. Transient failures are retried with jittered backoff; tool
	// rejection falls back to a tool-free variant; terminal rejections
	// propagate classified.
	Generate(ctx context.Context, req Request) (*Response, error)
}

type client struct {
	api    *openai.Client
	retry  tunables.Retry
	logger *slog.Logger
}

// New creates a model client from connection config and retry tunables.
func New(cfg *Config, retry tunables.Retry, logger *slog.Logger) Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &client{
		api:    openai.NewClientWithConfig(apiCfg),
		retry:  retry,
		logger: logger.With("system", "genai"),
	}
}

func (c *client) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for _, attempt := range strategies(req) {
		resp, err := c.generateVariant(ctx, attempt)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !attempt.continueOn(err) {
			return nil, err
		}

		c.logger.WarnContext(
			ctx, "falling back to next call variant",
			"variant", attempt.name,
			"error", err,
		)
	}

	return nil, lastErr
}

// generateVariant runs one call variant with per-call backoff state, so
// concurrent items' retries never serialize against each other.
func (c *client) generateVariant(ctx context.Context, v variant) (*Response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.BaseDelay
	b.Multiplier = c.retry.Multiplier
	b.MaxInterval = c.retry.MaxDelay
	b.MaxElapsedTime = 0

	attempts := uint64(0)
	if c.retry.MaxAttempts > 1 {
		attempts = uint64(c.retry.MaxAttempts - 1)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, attempts), ctx)

	op := func() (*Response, error) {
		resp, err := c.call(ctx, v.req)
		if err == nil {
			return resp, nil
		}

		classified := Classify(err)
		if Retryable(classified) {
			metrics.ModelRetries.Inc()
			return nil, classified
		}
		return nil, backoff.Permanent(classified)
	}

	notify := func(err error, delay time.Duration) {
		c.logger.WarnContext(
			ctx, "model call retrying",
			"model", v.req.Model,
			"delay", delay,
			"error", err,
		)
	}

	return backoff.RetryNotifyWithData(op, policy, notify)
}

func (c *client) call(ctx context.Context, req Request) (*Response, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	var total Usage

	for round := 0; round <= maxToolRounds; round++ {
		completion, err := c.api.CreateChatCompletion(ctx, buildRequest(req, messages))
		if err != nil {
			metrics.ModelCalls.WithLabelValues(req.Model, "error").Inc()
			return nil, err
		}

		total.PromptTokens += completion.Usage.PromptTokens
		total.CompletionTokens += completion.Usage.CompletionTokens
		total.TotalTokens += completion.Usage.TotalTokens

		if len(completion.Choices) == 0 {
			metrics.ModelCalls.WithLabelValues(req.Model, "empty").Inc()
			return nil, fmt.Errorf("%w: empty completion", ErrModelRequest)
		}

		choice := completion.Choices[0]
		if len(choice.Message.ToolCalls) == 0 || req.ToolHandler == nil {
			metrics.ModelCalls.WithLabelValues(req.Model, "ok").Inc()
			c.logUsage(ctx, req.Model, total)
			return &Response{Text: choice.Message.Content, Usage: total}, nil
		}

		messages = append(messages, choice.Message)
		for _, call := range choice.Message.ToolCalls {
			result, err := req.ToolHandler(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				result = fmt.Sprintf("tool error: %v", err)
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	metrics.ModelCalls.WithLabelValues(req.Model, "tool_overflow").Inc()
	return nil, fmt.Errorf("%w: exceeded %d tool rounds", ErrModelRejected, maxToolRounds)
}

func (c *client) logUsage(ctx context.Context, model string, usage Usage) {
	c.logger.InfoContext(
		ctx, "model call complete",
		"model", model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens,
	)
}

func buildRequest(req Request, messages []openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}

	if req.Schema != nil {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Definition,
				Strict: true,
			},
		}
	}

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	return out
}
