// Package families implements the canonical font family domain: the
// server-persisted, authoritative family records that uploads resolve into
// and the analysis pipeline enriches. It provides types, data access,
// conflict detection, and HTTP handlers.
package families

import (
	"time"

	"github.com/google/uuid"

	"github.com/typevault/typevault/workflow"
)

// Variant is one member font of a family, occupying a (family, subfamily)
// slot. Two different files claiming the same slot is a style conflict.
type Variant struct {
	IngestID    uuid.UUID `json:"ingest_id"`
	Subfamily   string    `json:"subfamily"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Format      string    `json:"format,omitempty"`
	WeightClass int       `json:"weight_class,omitempty"`
}

// FontFamily is the canonical family record. At most one exists per
// (owner, normalized name) pair; conflicting uploads are quarantined, never
// silently duplicated.
type FontFamily struct {
	ID             uuid.UUID                `json:"id"`
	Owner          *string                  `json:"owner"`
	Name           string                   `json:"name"`
	NormalizedName string                   `json:"normalized_name"`
	Foundry        *string                  `json:"foundry"`
	Description    *string                  `json:"description"`
	Classification *string                  `json:"classification"`
	Tags           []string                 `json:"tags"`
	Analysis       *workflow.AnalysisResult `json:"analysis,omitempty"`
	Variants       []Variant                `json:"variants"`
	AnalyzedAt     *time.Time               `json:"analyzed_at"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ResolveCommand carries the data needed to resolve an upload into its
// canonical family: find-or-create by normalized name, then claim the
// variant's (family, subfamily) slot.
type ResolveCommand struct {
	Owner   *string
	Name    string
	Foundry *string
	Variant Variant
}
