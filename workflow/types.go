package workflow

import (
	"github.com/typevault/typevault/pkg/fontparse"
)

// Stage identifies one pipeline stage.
type Stage string

// Pipeline stages in execution order.
const (
	StageVisual    Stage = "visual"
	StageEnrich    Stage = "enrich"
	StageSummarize Stage = "summarize"
)

// Unknown is the literal value a model emits for any field it cannot
// support with evidence. It is never treated as a guess.
const Unknown = "unknown"

// VisualMetrics carries optional measured letterform metrics. Pointer fields
// distinguish "not measured" from a measured zero; absent metrics are simply
// omitted from the prompt.
type VisualMetrics struct {
	XHeightRatio  *float64 `json:"x_height_ratio,omitempty"`
	ContrastIndex *float64 `json:"contrast_index,omitempty"`
	StressAngle   *float64 `json:"stress_angle,omitempty"`
	ApertureIndex *float64 `json:"aperture_index,omitempty"`
	Roundness     *float64 `json:"roundness,omitempty"`
	TerminalStyle string   `json:"terminal_style,omitempty"`
}

// Classified is a single classification decision with its confidence and
// the metric or metadata evidence that justified it.
type Classified struct {
	Value      string   `json:"value"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
}

// Tag is one mood or use-case label with an independent confidence.
type Tag struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// SourceRef cites an external source used by the enrich stage.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FoundationalFacts is the deterministic, rule-derived metadata merged into
// every analysis result. Derivation never fails; missing inputs omit fields.
type FoundationalFacts struct {
	FeatureTags   []string          `json:"feature_tags,omitempty"`
	AxisRoles     map[string]string `json:"axis_roles,omitempty"`
	ColorFormats  []string          `json:"color_formats,omitempty"`
	EngineProfile string            `json:"engine_profile,omitempty"`
	OpticalBucket string            `json:"optical_bucket,omitempty"`
}

// AnalysisResult is the validated output of one pipeline stage.
type AnalysisResult struct {
	StylePrimary   Classified         `json:"style_primary"`
	StyleSub       *Classified        `json:"style_sub,omitempty"`
	Moods          []Tag              `json:"moods,omitempty"`
	UseCases       []Tag              `json:"use_cases,omitempty"`
	NegativeTags   []string           `json:"negative_tags,omitempty"`
	Sources        []SourceRef        `json:"sources,omitempty"`
	Facts          *FoundationalFacts `json:"facts,omitempty"`
	ConfidenceBand string             `json:"confidence_band,omitempty"`
}

// Input bundles everything the pipeline needs for one family.
type Input struct {
	Family    string              `json:"family"`
	Foundry   string              `json:"foundry,omitempty"`
	Metadata  *fontparse.Metadata `json:"metadata"`
	Metrics   *VisualMetrics      `json:"metrics,omitempty"`
	Variants  []string            `json:"variants,omitempty"`
	KnownGaps []string            `json:"known_gaps,omitempty"`
}

// Output is the final pipeline product: the last validated analysis result
// plus the marketing description from the summarize stage.
type Output struct {
	Result      *AnalysisResult `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	Stages      []StageReport   `json:"stages"`
}

// StageReport records one stage's outcome for observability.
type StageReport struct {
	Stage    Stage    `json:"stage"`
	Ran      bool     `json:"ran"`
	Produced bool     `json:"produced"`
	Warnings []string `json:"warnings,omitempty"`
}
