package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the public API surface: observability endpoints are
// open, everything under /v1 requires a tenant credential, and tenant
// provisioning (when enabled) sits behind the admin token.
func NewRouter(handler *Handler, resolver CredentialResolver, admin *AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(TenantAuth(resolver))
		handler.Register(r)
	})

	if admin != nil {
		admin.Register(r)
	}

	return r
}
