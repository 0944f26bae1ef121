package families

import (
	"context"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/workflow"
)

// System defines the public contract for family domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[FontFamily], error)

	Find(ctx context.Context, id uuid.UUID) (*FontFamily, error)
	FindByKey(ctx context.Context, owner *string, normalized string) (*FontFamily, error)

	// Resolve finds or creates the canonical family for an upload and claims
	// the variant's (family, subfamily) slot. Two different files claiming
	// the same slot return ErrConflict; re-resolving the same content is
	// idempotent.
	Resolve(ctx context.Context, cmd ResolveCommand) (*FontFamily, error)

	// Analyze runs the analysis pipeline for a family and persists the
	// validated result, tags, and description. A non-nil progress callback
	// is invoked as each pipeline stage begins.
	Analyze(ctx context.Context, id uuid.UUID, progress func(workflow.Stage)) (*FontFamily, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
