package ingests

import (
	"context"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/pagination"
)

// System defines the public contract for ingest domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Ingest], error)

	Find(ctx context.Context, id uuid.UUID) (*Ingest, error)
	Create(ctx context.Context, cmd CreateCommand) (*UploadResult, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Upload lane controls exposed to clients. Each validates the current
	// state and persists a single monotonic transition.
	Pause(ctx context.Context, id uuid.UUID) (*Ingest, error)
	Resume(ctx context.Context, id uuid.UUID) (*Ingest, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Ingest, error)

	// Resolve releases a quarantined ingest back to the analysis queue,
	// recording the chosen resolution policy.
	Resolve(ctx context.Context, id uuid.UUID, policy string) (*Ingest, error)

	// Orchestrator surface.
	NextQueued(ctx context.Context, limit int) ([]Ingest, error)
	TransitionAnalysis(ctx context.Context, id uuid.UUID, next AnalysisState) (*Ingest, error)
	AssignFamily(ctx context.Context, id, familyID uuid.UUID) error
	Quarantine(ctx context.Context, id uuid.UUID, message string) (*Ingest, error)
	FailAnalysis(ctx context.Context, id uuid.UUID, code, message string) (*Ingest, error)
}
