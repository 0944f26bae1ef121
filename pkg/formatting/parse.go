// Package formatting provides parsing utilities for untrusted model output
// and human-readable byte sizes.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly or after stripping a markdown code fence.
var ErrParseFailed = errors.New("failed to parse model output")

var fencedBlock = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse unmarshals model output as JSON into T. Model output is untrusted
// text: if direct parsing fails, the first markdown code fence is stripped
// and parsing is retried. Returns ErrParseFailed when both attempts fail;
// callers treat this as a soft failure, not a pipeline abort.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	if m := fencedBlock.FindStringSubmatch(content); len(m) >= 2 {
		inner := strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(inner), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %.200s", ErrParseFailed, content)
}
