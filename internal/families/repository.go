package families

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/naming"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
	"github.com/typevault/typevault/workflow"
)

const returning = `
	id, owner, name, normalized_name, foundry, description, classification,
	tags, analysis, variants, analyzed_at, created_at, updated_at`

type repo struct {
	db         *sql.DB
	rt         *workflow.Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a family repository implementing the System interface. The
// workflow runtime is used by Analyze; it may be nil in deployments that
// never run analysis.
func New(
	db *sql.DB,
	rt *workflow.Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		rt:         rt,
		logger:     logger.With("system", "families"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[FontFamily], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Foundry", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count families: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFamily)
	if err != nil {
		return nil, fmt.Errorf("query families: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*FontFamily, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFamily)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) FindByKey(ctx context.Context, owner *string, normalized string) (*FontFamily, error) {
	qb := query.NewBuilder(projection).
		WhereEquals("NormalizedName", &normalized).
		WhereNullable("Owner", ownerValue(owner))

	q, args := qb.Build()

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFamily)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

// Resolve claims the variant's (family, subfamily) slot under the canonical
// family for (owner, normalized name), creating the family when absent.
// Concurrent uploads destined for the same family serialize through this
// transaction; the family row itself follows last-writer-wins semantics.
func (r *repo) Resolve(ctx context.Context, cmd ResolveCommand) (*FontFamily, error) {
	if cmd.Name == "" || cmd.Variant.Subfamily == "" {
		return nil, ErrInvalid
	}

	normalized := naming.Normalize(cmd.Name)

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FontFamily, error) {
		qb := query.NewBuilder(projection).
			WhereEquals("NormalizedName", &normalized).
			WhereNullable("Owner", ownerValue(cmd.Owner))

		q, args := qb.Build()

		current, err := repository.QueryOne(ctx, tx, q, args, scanFamily)
		if errors.Is(err, sql.ErrNoRows) {
			return r.insert(ctx, tx, cmd, normalized)
		}
		if err != nil {
			return FontFamily{}, err
		}

		for _, v := range current.Variants {
			if v.Subfamily != cmd.Variant.Subfamily {
				continue
			}
			if v.ContentHash == cmd.Variant.ContentHash {
				return current, nil
			}
			return FontFamily{}, fmt.Errorf(
				"%w: %s / %s already claimed by %s",
				ErrConflict, current.Name, v.Subfamily, v.Filename,
			)
		}

		variants, err := json.Marshal(append(current.Variants, cmd.Variant))
		if err != nil {
			return FontFamily{}, fmt.Errorf("serialize variants: %w", err)
		}

		update := `
			UPDATE families
			SET variants = $2, updated_at = now()
			WHERE id = $1
			RETURNING ` + returning

		return repository.QueryOne(ctx, tx, update, []any{current.ID, variants}, scanFamily)
	})

	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"family resolved",
		"id", f.ID,
		"name", f.Name,
		"subfamily", cmd.Variant.Subfamily,
	)
	return &f, nil
}

// Analyze runs the pipeline for a family and persists the result. The
// family's member metadata is read from the ingests that resolved into it.
// The runtime is copied per call so concurrent analyses never share
// progress callbacks.
func (r *repo) Analyze(ctx context.Context, id uuid.UUID, progress func(workflow.Stage)) (*FontFamily, error) {
	family, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err := r.buildInput(ctx, family)
	if err != nil {
		return nil, err
	}

	rt := *r.rt
	rt.Progress = progress

	out, err := workflow.Run(ctx, &rt, input)
	if err != nil {
		return nil, err
	}

	return r.saveAnalysis(ctx, id, out)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM families WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("family deleted", "id", id)
	return nil
}

func (r *repo) buildInput(ctx context.Context, family *FontFamily) (workflow.Input, error) {
	input := workflow.Input{
		Family:   family.Name,
		Variants: make([]string, 0, len(family.Variants)),
	}
	if family.Foundry != nil {
		input.Foundry = *family.Foundry
	}
	for _, v := range family.Variants {
		input.Variants = append(input.Variants, v.Subfamily)
	}

	// Representative metadata comes from the oldest member ingest that
	// parsed successfully.
	q := `
		SELECT metadata FROM ingests
		WHERE family_id = $1 AND metadata IS NOT NULL
		ORDER BY created_at
		LIMIT 1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, q, family.ID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return input, ErrNoMembers
	}
	if err != nil {
		return input, fmt.Errorf("load member metadata: %w", err)
	}

	var md fontparse.Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return input, fmt.Errorf("decode member metadata: %w", err)
	}
	input.Metadata = &md

	if input.Metrics == nil {
		input.KnownGaps = append(input.KnownGaps, "no measured visual metrics")
	}

	return input, nil
}

func (r *repo) saveAnalysis(ctx context.Context, id uuid.UUID, out *workflow.Output) (*FontFamily, error) {
	analysis, err := json.Marshal(out.Result)
	if err != nil {
		return nil, fmt.Errorf("serialize analysis: %w", err)
	}

	tags, err := json.Marshal(collectTags(out.Result))
	if err != nil {
		return nil, fmt.Errorf("serialize tags: %w", err)
	}

	var description *string
	if out.Description != "" {
		description = &out.Description
	}

	update := `
		UPDATE families
		SET classification = $2,
			tags = $3,
			analysis = $4,
			description = COALESCE($5, description),
			analyzed_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + returning

	args := []any{
		id,
		out.Result.StylePrimary.Value,
		tags,
		analysis,
		description,
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FontFamily, error) {
		return repository.QueryOne(ctx, tx, update, args, scanFamily)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"family analyzed",
		"id", f.ID,
		"classification", out.Result.StylePrimary.Value,
		"band", out.Result.ConfidenceBand,
	)
	return &f, nil
}

func (r *repo) insert(
	ctx context.Context,
	tx *sql.Tx,
	cmd ResolveCommand,
	normalized string,
) (FontFamily, error) {
	variants, err := json.Marshal([]Variant{cmd.Variant})
	if err != nil {
		return FontFamily{}, fmt.Errorf("serialize variants: %w", err)
	}

	q := `
		INSERT INTO families(id, owner, name, normalized_name, foundry, variants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + returning

	args := []any{
		uuid.New(),
		cmd.Owner,
		cmd.Name,
		normalized,
		cmd.Foundry,
		variants,
	}

	return repository.QueryOne(ctx, tx, q, args, scanFamily)
}

// collectTags flattens mood and use-case tags into the flat searchable tag
// list, deduplicated and sorted.
func collectTags(result *workflow.AnalysisResult) []string {
	var all []string
	for _, t := range result.Moods {
		all = append(all, t.Value)
	}
	for _, t := range result.UseCases {
		all = append(all, t.Value)
	}

	slices.Sort(all)
	all = slices.Compact(all)

	if all == nil {
		all = []string{}
	}

	return all
}

func ownerValue(owner *string) any {
	if owner == nil {
		return nil
	}
	return *owner
}
