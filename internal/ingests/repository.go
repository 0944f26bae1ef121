package ingests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/events"
	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/hashing"
	"github.com/typevault/typevault/pkg/metrics"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
	"github.com/typevault/typevault/pkg/storage"
	"github.com/typevault/typevault/pkg/tunables"
)

// Resolution policies for quarantined ingests. Only quarantine-and-release
// is wired end to end; the policy string is persisted for audit either way.
var resolutionPolicies = []string{
	"quarantine",
	"keep_existing",
	"replace",
	"rename",
}

const returning = `
	id, owner, filename, content_type, size_bytes, quick_hash, content_hash,
	storage_key, metadata, family_id, upload_state, analysis_state,
	quarantined, resolution, resolved_at, error_code, error_message,
	created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	publisher  events.Publisher
	tunables   tunables.Provider
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an ingest repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	publisher events.Publisher,
	provider tunables.Provider,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		publisher:  publisher,
		tunables:   provider,
		logger:     logger.With("system", "ingests"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Ingest], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "ContentHash")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count ingests: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanIngest)
	if err != nil {
		return nil, fmt.Errorf("query ingests: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Ingest, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanIngest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

// Create registers, stores, and verifies one uploaded font file. The server
// recomputes both hashes; client-supplied values only produce a warning on
// mismatch. A content hash already owned short-circuits as a duplicate
// without writing a new row or blob. A parse failure still yields a
// well-formed ingest record in the failed state.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*UploadResult, error) {
	if len(cmd.Data) == 0 || cmd.Filename == "" {
		return nil, ErrInvalidFile
	}

	quick := hashing.QuickHash(cmd.Data)
	content := hashing.ContentHash(cmd.Data)

	var warning string
	if cmd.ClientContentHash != "" && cmd.ClientContentHash != content {
		warning = "client content hash mismatch; server value is authoritative"
	}

	if existing, err := r.findByContent(ctx, cmd.Owner, content); err == nil {
		r.logger.Info(
			"duplicate upload detected",
			"id", existing.ID,
			"content_hash", content,
		)
		return &UploadResult{Ingest: existing, Duplicate: true, Warning: warning}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	md, parseErr := fontparse.Parse(cmd.Data)
	key := storage.Key(content, sanitizeFilename(cmd.Filename))

	ingest, err := r.insert(ctx, cmd, quick, content, key, md)
	if err != nil {
		return nil, err
	}

	if parseErr != nil {
		failed, err := r.failUpload(ctx, ingest.ID, CodeParseError, parseErr.Error())
		if err != nil {
			return nil, err
		}
		return &UploadResult{Ingest: failed, Warning: warning}, nil
	}

	for _, next := range []UploadState{UploadHashing, UploadUploading} {
		if ingest, err = r.transitionUpload(ctx, ingest.ID, next); err != nil {
			return nil, err
		}
	}

	if err := r.storage.Put(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		if _, failErr := r.failUpload(ctx, ingest.ID, CodeStoreFailure, err.Error()); failErr != nil {
			r.logger.Error("failed to record store failure", "id", ingest.ID, "error", failErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if ingest, err = r.transitionUpload(ctx, ingest.ID, UploadVerifying); err != nil {
		return nil, err
	}

	exists, err := r.storage.Exists(ctx, key)
	if err != nil || !exists {
		if _, failErr := r.failUpload(ctx, ingest.ID, CodeStoreFailure, "blob missing after upload"); failErr != nil {
			r.logger.Error("failed to record store failure", "id", ingest.ID, "error", failErr)
		}
		return nil, fmt.Errorf("%w: verification failed", ErrStore)
	}

	if ingest, err = r.transitionUpload(ctx, ingest.ID, UploadUploaded); err != nil {
		return nil, err
	}

	// When analysis is disabled the lane stays at not_started; nothing is
	// queued and no model call will ever be made for this ingest.
	if tunables.Bool(r.tunables, tunables.KeyAIEnabled, true) {
		if ingest, err = r.TransitionAnalysis(ctx, ingest.ID, AnalysisQueued); err != nil {
			return nil, err
		}
	}

	r.logger.Info(
		"ingest created",
		"id", ingest.ID,
		"filename", ingest.Filename,
		"content_hash", content,
	)
	return &UploadResult{Ingest: ingest, Warning: warning}, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	ingest, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM ingests WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// Blobs are content-addressed and may be shared; only remove the blob
	// when no other ingest references the same content.
	var refs int
	err = r.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM ingests WHERE content_hash = $1",
		ingest.ContentHash,
	).Scan(&refs)
	if err == nil && refs == 0 && ingest.StorageKey != "" {
		if delErr := r.storage.Delete(ctx, ingest.StorageKey); delErr != nil {
			r.logger.Warn(
				"blob delete failed after row delete",
				"key", ingest.StorageKey,
				"error", delErr,
			)
		}
	}

	r.logger.Info("ingest deleted", "id", id)
	return nil
}

func (r *repo) Pause(ctx context.Context, id uuid.UUID) (*Ingest, error) {
	return r.transitionUpload(ctx, id, UploadPaused)
}

func (r *repo) Resume(ctx context.Context, id uuid.UUID) (*Ingest, error) {
	return r.transitionUpload(ctx, id, UploadResumed)
}

func (r *repo) Cancel(ctx context.Context, id uuid.UUID) (*Ingest, error) {
	return r.transitionUpload(ctx, id, UploadCanceled)
}

func (r *repo) Resolve(ctx context.Context, id uuid.UUID, policy string) (*Ingest, error) {
	if !slices.Contains(resolutionPolicies, policy) {
		return nil, fmt.Errorf("%w: unknown resolution policy %q", ErrInvalidFile, policy)
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ingest, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		current, err := repository.QueryOne(ctx, tx, q, args, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		if !current.Quarantined {
			return Ingest{}, ErrNotQuarantined
		}
		if !current.AnalysisState.CanTransition(AnalysisQueued) {
			return Ingest{}, transitionError("analysis", string(current.AnalysisState), string(AnalysisQueued))
		}

		update := `
			UPDATE ingests
			SET quarantined = false,
				resolution = $2,
				resolved_at = $3,
				analysis_state = $4,
				error_code = NULL,
				error_message = NULL,
				updated_at = now()
			WHERE id = $1
			RETURNING ` + returning

		next, err := repository.QueryOne(
			ctx, tx, update,
			[]any{id, policy, time.Now().UTC(), AnalysisQueued},
			scanIngest,
		)
		if err != nil {
			return Ingest{}, err
		}

		r.publish(ctx, next.ID, "analysis", string(current.AnalysisState), string(next.AnalysisState))
		return next, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("quarantine resolved", "id", i.ID, "policy", policy)
	return &i, nil
}

func (r *repo) NextQueued(ctx context.Context, limit int) ([]Ingest, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM ingests
		WHERE analysis_state = $1 AND upload_state = $2
		ORDER BY created_at
		LIMIT $3`, returning)

	items, err := repository.QueryMany(
		ctx, r.db, q,
		[]any{AnalysisQueued, UploadUploaded, limit},
		scanIngest,
	)
	if err != nil {
		return nil, fmt.Errorf("query queued ingests: %w", err)
	}
	return items, nil
}

// TransitionAnalysis persists one monotonic analysis lane transition.
// Leaving not_started additionally requires a completed upload, so a
// canceled or failed upload can never reach the analysis queue.
func (r *repo) TransitionAnalysis(ctx context.Context, id uuid.UUID, next AnalysisState) (*Ingest, error) {
	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ingest, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		current, err := repository.QueryOne(ctx, tx, q, args, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		if !current.AnalysisState.CanTransition(next) {
			return Ingest{}, transitionError("analysis", string(current.AnalysisState), string(next))
		}
		if current.AnalysisState == AnalysisNotStarted && current.UploadState != UploadUploaded {
			return Ingest{}, transitionError("analysis", string(current.AnalysisState), string(next))
		}

		update := `
			UPDATE ingests
			SET analysis_state = $2, updated_at = now()
			WHERE id = $1
			RETURNING ` + returning

		updated, err := repository.QueryOne(ctx, tx, update, []any{id, next}, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		r.publish(ctx, updated.ID, "analysis", string(current.AnalysisState), string(next))
		return updated, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

func (r *repo) AssignFamily(ctx context.Context, id, familyID uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE ingests SET family_id = $2, updated_at = now() WHERE id = $1",
			id, familyID,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Quarantine(ctx context.Context, id uuid.UUID, message string) (*Ingest, error) {
	i, err := r.markAnalysis(ctx, id, AnalysisQuarantined, CodeConflictDetected, message, true)
	if err != nil {
		return nil, err
	}

	r.logger.Warn("ingest quarantined", "id", id, "reason", message)
	return i, nil
}

func (r *repo) FailAnalysis(ctx context.Context, id uuid.UUID, code, message string) (*Ingest, error) {
	i, err := r.markAnalysis(ctx, id, AnalysisError, code, message, false)
	if err != nil {
		return nil, err
	}

	r.logger.Error("analysis failed", "id", id, "code", code, "error", message)
	return i, nil
}

func (r *repo) markAnalysis(
	ctx context.Context,
	id uuid.UUID,
	next AnalysisState,
	code, message string,
	quarantined bool,
) (*Ingest, error) {
	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ingest, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		current, err := repository.QueryOne(ctx, tx, q, args, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		if !current.AnalysisState.CanTransition(next) {
			return Ingest{}, transitionError("analysis", string(current.AnalysisState), string(next))
		}

		update := `
			UPDATE ingests
			SET analysis_state = $2,
				quarantined = $3,
				error_code = $4,
				error_message = $5,
				updated_at = now()
			WHERE id = $1
			RETURNING ` + returning

		updated, err := repository.QueryOne(
			ctx, tx, update,
			[]any{id, next, quarantined, code, message},
			scanIngest,
		)
		if err != nil {
			return Ingest{}, err
		}

		r.publish(ctx, updated.ID, "analysis", string(current.AnalysisState), string(next))
		return updated, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

func (r *repo) transitionUpload(ctx context.Context, id uuid.UUID, next UploadState) (*Ingest, error) {
	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ingest, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		current, err := repository.QueryOne(ctx, tx, q, args, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		if !current.UploadState.CanTransition(next) {
			return Ingest{}, transitionError("upload", string(current.UploadState), string(next))
		}

		update := `
			UPDATE ingests
			SET upload_state = $2, updated_at = now()
			WHERE id = $1
			RETURNING ` + returning

		updated, err := repository.QueryOne(ctx, tx, update, []any{id, next}, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		r.publish(ctx, updated.ID, "upload", string(current.UploadState), string(next))
		return updated, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

func (r *repo) failUpload(ctx context.Context, id uuid.UUID, code, message string) (*Ingest, error) {
	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ingest, error) {
		q, args := query.NewBuilder(projection).BuildSingle("ID", id)
		current, err := repository.QueryOne(ctx, tx, q, args, scanIngest)
		if err != nil {
			return Ingest{}, err
		}

		if !current.UploadState.CanTransition(UploadFailed) {
			return Ingest{}, transitionError("upload", string(current.UploadState), string(UploadFailed))
		}

		update := `
			UPDATE ingests
			SET upload_state = $2, error_code = $3, error_message = $4, updated_at = now()
			WHERE id = $1
			RETURNING ` + returning

		updated, err := repository.QueryOne(
			ctx, tx, update,
			[]any{id, UploadFailed, code, message},
			scanIngest,
		)
		if err != nil {
			return Ingest{}, err
		}

		r.publish(ctx, updated.ID, "upload", string(current.UploadState), string(UploadFailed))
		return updated, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Warn("upload failed", "id", id, "code", code, "error", message)
	return &i, nil
}

func (r *repo) insert(
	ctx context.Context,
	cmd CreateCommand,
	quick, content, key string,
	md *fontparse.Metadata,
) (*Ingest, error) {
	var metadata []byte
	if md != nil {
		var err error
		if metadata, err = json.Marshal(md); err != nil {
			return nil, fmt.Errorf("serialize metadata: %w", err)
		}
	}

	q := `
		INSERT INTO ingests(
			id, owner, filename, content_type, size_bytes,
			quick_hash, content_hash, storage_key, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + returning

	args := []any{
		uuid.New(),
		cmd.Owner,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		quick,
		content,
		key,
		metadata,
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Ingest, error) {
		return repository.QueryOne(ctx, tx, q, args, scanIngest)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

func (r *repo) findByContent(ctx context.Context, owner *string, contentHash string) (*Ingest, error) {
	q, args := contentLookup(owner, contentHash)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanIngest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

// contentLookup builds the duplicate-detection query. Ownership scopes the
// match: a nil owner matches only unowned rows, never another owner's
// identical upload.
func contentLookup(owner *string, contentHash string) (string, []any) {
	return query.NewBuilder(projection).
		WhereEquals("ContentHash", &contentHash).
		WhereNullable("Owner", ownerValue(owner)).
		Build()
}

func ownerValue(owner *string) any {
	if owner == nil {
		return nil
	}
	return *owner
}

func (r *repo) publish(ctx context.Context, id uuid.UUID, lane, from, to string) {
	metrics.IngestTransitions.WithLabelValues(lane, to).Inc()
	r.publisher.Publish(ctx, events.Transition{
		IngestID: id,
		Lane:     lane,
		From:     from,
		To:       to,
		At:       time.Now().UTC(),
	})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "font"
	}
	return url.PathEscape(name)
}

func transitionError(lane, from, to string) error {
	return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, lane, from, to)
}
