package prompts

const classificationSpec = `Respond with a JSON object matching this exact structure:

{
  "style_primary": {"value": "<style>", "confidence": 0.0, "evidence": ["<field>"]},
  "style_sub": {"value": "<substyle>", "confidence": 0.0, "evidence": ["<field>"]},
  "moods": [{"value": "<mood>", "confidence": 0.0}],
  "use_cases": [{"value": "<use case>", "confidence": 0.0}],
  "negative_tags": ["<tag>"],
  "sources": [{"title": "<title>", "url": "<url>"}]
}

Field constraints:
- style_primary.value: One of serif, sans-serif, slab-serif, script,
  handwritten, monospace, display, blackletter, symbol, or the literal
  "unknown" when the evidence is insufficient. This field is required.
- style_sub: Optional refinement (e.g., geometric, humanist, didone).
  Omit the field entirely rather than guessing.
- confidence: A number in [0,1] reflecting how strongly the cited
  evidence supports the value.
- evidence: The metadata fields or metrics that justify the value
  (e.g., "contrast_index", "feature_tags", "family_name").
- moods, use_cases: Zero or more tags, each with its own confidence.
- negative_tags: Qualities the family clearly does not have.
- sources: External references for claims not derived from the file.
  Empty for file-evidence-only analysis.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Emit "unknown" instead of guessing; never fabricate evidence
- Cite only fields actually present in the provided input`

const summarizeSpec = `Respond with a JSON object matching this exact structure:

{
  "description": "<paragraph>"
}

Field constraints:
- description: A single paragraph of at most 50 words describing the
  family's character and strongest use cases.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Stay within the 50-word limit
- Ground every claim in the provided classification`

var specs = map[Stage]string{
	StageVisual:    classificationSpec,
	StageEnrich:    classificationSpec,
	StageSummarize: summarizeSpec,
}

// Spec returns the hardcoded specification for a pipeline stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
