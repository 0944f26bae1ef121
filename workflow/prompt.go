package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/typevault/typevault/internal/prompts"
)

// ComposePrompt builds the system prompt for a stage by combining the
// effective instructions (active override or hardcoded default) with the
// stage's immutable output specification.
func ComposePrompt(ctx context.Context, ps prompts.System, stage prompts.Stage) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load output spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	return sb.String(), nil
}

// payload serializes a value as the user-visible prompt body. Everything the
// model sees about the family flows through here.
func payload(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize prompt payload: %w", err)
	}
	return string(data), nil
}
