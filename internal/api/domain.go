package api

import (
	"context"

	"github.com/typevault/typevault/internal/config"
	"github.com/typevault/typevault/internal/families"
	"github.com/typevault/typevault/internal/ingests"
	"github.com/typevault/typevault/internal/orchestrator"
	"github.com/typevault/typevault/internal/prompts"
	"github.com/typevault/typevault/pkg/search"
	"github.com/typevault/typevault/pkg/tunables"
	"github.com/typevault/typevault/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Ingests      ingests.System
	Families     families.System
	Prompts      prompts.System
	Orchestrator *orchestrator.Orchestrator
}

// NewDomain creates all domain systems from the API runtime. The analysis
// pipeline runtime is shared between the families system, which runs it, and
// the prompt system, which supplies its stage instructions.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	pipeline := &workflow.Runtime{
		Model:    runtime.Model,
		Prompts:  promptsSystem,
		Tunables: runtime.Tunables,
		Search:   searchFunc(runtime),
		Logger:   runtime.Logger,
	}

	familiesSystem := families.New(
		runtime.Database.Connection(),
		pipeline,
		runtime.Logger,
		runtime.Pagination,
	)

	ingestsSystem := ingests.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Events,
		runtime.Tunables,
		runtime.Logger,
		runtime.Pagination,
	)

	orch := orchestrator.New(
		ingestsSystem,
		familiesSystem,
		runtime.Tunables,
		runtime.Logger,
		cfg.PollIntervalDuration(),
	)

	return &Domain{
		Ingests:      ingestsSystem,
		Families:     familiesSystem,
		Prompts:      promptsSystem,
		Orchestrator: orch,
	}
}

// searchFunc backs the enrich stage's search tool with the configured
// metasearch endpoint. No configured endpoint means no tool: the stage
// then runs on the model's own knowledge.
func searchFunc(runtime *Runtime) workflow.SearchFunc {
	endpoint := tunables.String(runtime.Tunables, tunables.KeySearchURL, "")
	if endpoint == "" {
		return nil
	}

	client := search.New(
		endpoint,
		tunables.Int(runtime.Tunables, tunables.KeySearchMaxResults, 5),
		runtime.Logger,
	)

	return func(ctx context.Context, query string) ([]workflow.SearchResult, error) {
		hits, err := client.Search(ctx, query)
		if err != nil {
			return nil, err
		}

		results := make([]workflow.SearchResult, len(hits))
		for i, hit := range hits {
			results[i] = workflow.SearchResult{
				Title:   hit.Title,
				URL:     hit.URL,
				Snippet: hit.Content,
			}
		}
		return results, nil
	}
}
