package api

import (
	"net/http"

	"github.com/arboretica/lore/internal/config"
	"github.com/arboretica/lore/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	download := newDownloadHandler(domain.Documents, runtime.Storage, runtime.Logger)

	routes.Register(
		mux,
		domain.Companies.Handler().Routes(),
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Knowledge.Handler().Routes(),
		domain.Notifications.Handler().Routes(),
		domain.Advisor.Handler().Routes(),
		domain.Analytics.Handler().Routes(),
		download.routes(),
	)
}
