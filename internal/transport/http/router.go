// Package httptransport assembles the chi router from the per-domain
// handlers. Handlers register their own routes; this package owns only the
// middleware chain and the operational endpoints.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"incentra/pkg/platform/httputil"
	"incentra/pkg/platform/middleware/metadata"
	"incentra/pkg/platform/middleware/requestid"
	"incentra/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the service router. Every registered handler sees a
// request context carrying a request ID, the request-scoped clock, and
// client metadata.
func NewRouter(handlers ...Registrar) chi.Router {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
