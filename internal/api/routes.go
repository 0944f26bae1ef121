package api

import (
	"net/http"

	"github.com/typevault/typevault/internal/config"
	"github.com/typevault/typevault/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	meta := newMetaHandler(cfg, runtime.Tunables)
	blobs := newStorageHandler(runtime.Storage, runtime.Logger)

	routes.Register(
		mux,
		domain.Ingests.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Families.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		meta.routes(),
		blobs.routes(),
	)
}
