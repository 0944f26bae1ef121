// Package orchestrator drives the server side of the analysis pipeline:
// it drains the ingest analysis queue, resolves canonical families with
// conflict detection, runs the pipeline with a bounded in-flight count, and
// persists lane transitions as work progresses.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/typevault/typevault/internal/families"
	"github.com/typevault/typevault/internal/ingests"
	"github.com/typevault/typevault/pkg/lifecycle"
	"github.com/typevault/typevault/pkg/tunables"
	"github.com/typevault/typevault/workflow"
)

// DefaultPollInterval is how often the queue is drained when idle.
const DefaultPollInterval = 5 * time.Second

// Orchestrator processes queued ingests in the background.
type Orchestrator struct {
	ingests  ingests.System
	families families.System
	tunables tunables.Provider
	logger   *slog.Logger
	interval time.Duration
}

// New creates an orchestrator over the ingest and family systems.
func New(
	ing ingests.System,
	fam families.System,
	provider tunables.Provider,
	logger *slog.Logger,
	interval time.Duration,
) *Orchestrator {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Orchestrator{
		ingests:  ing,
		families: fam,
		tunables: provider,
		logger:   logger.With("system", "orchestrator"),
		interval: interval,
	}
}

// Start registers the polling loop with the lifecycle coordinator. The loop
// stops when the coordinator's context is canceled.
func (o *Orchestrator) Start(lc *lifecycle.Coordinator) {
	ctx := lc.Context()
	lc.OnStartup(func() {
		go o.run(ctx)
	})
}

func (o *Orchestrator) run(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.logger.Info("orchestrator started", "interval", o.interval)

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator stopped")
			return
		case <-ticker.C:
			if err := o.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Error("queue drain failed", "error", err)
			}
		}
	}
}

// Drain processes one batch of queued ingests, at most the configured
// maximum in-flight count, each on its own goroutine. Per-item failures are
// recorded on the ingest and never abort the batch.
func (o *Orchestrator) Drain(ctx context.Context) error {
	maxInFlight := tunables.Int(o.tunables, tunables.KeyMaxInFlight, 4)

	batch, err := o.ingests.NextQueued(ctx, maxInFlight)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for _, ingest := range batch {
		g.Go(func() error {
			o.process(ctx, ingest)
			return nil
		})
	}

	return g.Wait()
}

// process advances one ingest from queued to a terminal analysis state.
func (o *Orchestrator) process(ctx context.Context, ingest ingests.Ingest) {
	logger := o.logger.With("ingest", ingest.ID, "filename", ingest.Filename)

	if _, err := o.ingests.TransitionAnalysis(ctx, ingest.ID, ingests.AnalysisAnalyzing); err != nil {
		logger.Warn("skipping ingest", "error", err)
		return
	}

	familyID, err := o.resolveFamily(ctx, &ingest)
	if err != nil {
		if errors.Is(err, families.ErrConflict) {
			if _, qErr := o.ingests.Quarantine(ctx, ingest.ID, err.Error()); qErr != nil {
				logger.Error("quarantine failed", "error", qErr)
			}
			return
		}
		o.fail(ctx, logger, ingest.ID, err)
		return
	}

	progress := func(stage workflow.Stage) {
		if stage != workflow.StageEnrich {
			return
		}
		if _, err := o.ingests.TransitionAnalysis(ctx, ingest.ID, ingests.AnalysisEnriching); err != nil {
			logger.Warn("enriching transition rejected", "error", err)
		}
	}

	if _, err := o.families.Analyze(ctx, familyID, progress); err != nil {
		// Disabled-mid-flight included: the ingest lands in the error state
		// with a message and can be re-queued once conditions change.
		o.fail(ctx, logger, ingest.ID, err)
		return
	}

	if _, err := o.ingests.TransitionAnalysis(ctx, ingest.ID, ingests.AnalysisComplete); err != nil {
		logger.Error("completion transition rejected", "error", err)
		return
	}

	logger.Info("ingest analysis complete", "family", familyID)
}

// resolveFamily assigns the canonical family for an ingest, creating it when
// absent and detecting (family, subfamily) slot conflicts.
func (o *Orchestrator) resolveFamily(ctx context.Context, ingest *ingests.Ingest) (uuid.UUID, error) {
	if ingest.FamilyID != nil {
		return *ingest.FamilyID, nil
	}

	md := ingest.Metadata
	if md == nil {
		return uuid.Nil, fmt.Errorf("ingest %s has no parsed metadata", ingest.ID)
	}

	family, err := o.families.Resolve(ctx, families.ResolveCommand{
		Owner: ingest.Owner,
		Name:  md.Family,
		Variant: families.Variant{
			IngestID:    ingest.ID,
			Subfamily:   md.Subfamily,
			Filename:    ingest.Filename,
			ContentHash: ingest.ContentHash,
			Format:      string(md.Format),
			WeightClass: md.WeightClass,
		},
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := o.ingests.AssignFamily(ctx, ingest.ID, family.ID); err != nil {
		return uuid.Nil, err
	}

	return family.ID, nil
}

func (o *Orchestrator) fail(ctx context.Context, logger *slog.Logger, id uuid.UUID, err error) {
	if _, fErr := o.ingests.FailAnalysis(ctx, id, ingests.CodeAnalysisFailure, err.Error()); fErr != nil {
		logger.Error("failure transition rejected", "error", fErr)
	}
}
