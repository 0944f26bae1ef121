package workflow

import (
	"encoding/json"

	"github.com/typevault/typevault/pkg/genai"
)

// JSON schemas handed to the model service as structured-output constraints.
// The pipeline still validates every parsed result; the schema only narrows
// what well-behaved backends emit.
var (
	classificationSchema = &genai.Schema{
		Name: "font_classification",
		Definition: json.RawMessage(`{
			"type": "object",
			"properties": {
				"style_primary": {"$ref": "#/$defs/classified"},
				"style_sub": {"$ref": "#/$defs/classified"},
				"moods": {"type": "array", "items": {"$ref": "#/$defs/tag"}},
				"use_cases": {"type": "array", "items": {"$ref": "#/$defs/tag"}},
				"negative_tags": {"type": "array", "items": {"type": "string"}},
				"sources": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"title": {"type": "string"},
							"url": {"type": "string"}
						},
						"required": ["url"]
					}
				}
			},
			"required": ["style_primary"],
			"$defs": {
				"classified": {
					"type": "object",
					"properties": {
						"value": {"type": "string"},
						"confidence": {"type": "number", "minimum": 0, "maximum": 1},
						"evidence": {"type": "array", "items": {"type": "string"}}
					},
					"required": ["value", "confidence"]
				},
				"tag": {
					"type": "object",
					"properties": {
						"value": {"type": "string"},
						"confidence": {"type": "number", "minimum": 0, "maximum": 1}
					},
					"required": ["value", "confidence"]
				}
			}
		}`),
	}

	summarySchema = &genai.Schema{
		Name: "font_summary",
		Definition: json.RawMessage(`{
			"type": "object",
			"properties": {
				"description": {"type": "string"}
			},
			"required": ["description"]
		}`),
	}
)
