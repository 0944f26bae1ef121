package api

import (
	"net/http"

	"github.com/typevault/typevault/internal/config"
	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/naming"
	"github.com/typevault/typevault/pkg/routes"
	"github.com/typevault/typevault/pkg/tunables"
)

// metaHandler reports service metadata: the running version, the grouping
// ruleset version clients compare against for stale previews, and the
// current analysis feature flags.
type metaHandler struct {
	version  string
	tunables tunables.Provider
}

func newMetaHandler(cfg *config.Config, provider tunables.Provider) *metaHandler {
	return &metaHandler{
		version:  cfg.Version,
		tunables: provider,
	}
}

func (h *metaHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/meta",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.meta},
		},
	}
}

func (h *metaHandler) meta(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"version":         h.version,
		"ruleset_version": naming.RulesetVersion,
		"features": map[string]bool{
			"analysis": tunables.Bool(h.tunables, tunables.KeyAIEnabled, true),
			"enrich":   tunables.Bool(h.tunables, tunables.KeyEnrichEnabled, true),
			"summary":  tunables.Bool(h.tunables, tunables.KeySummaryEnabled, true),
		},
	})
}
