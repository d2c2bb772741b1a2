// Package httptransport wires the HTTP surface. It is a thin layer: every
// route delegates to a domain handler, which delegates to a service.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "chefpass/internal/identity/handler"
	passhandler "chefpass/internal/pass/handler"
	"chefpass/internal/platform/health"
	printqhandler "chefpass/internal/printq/handler"
	"chefpass/pkg/platform/middleware/approver"
	"chefpass/pkg/platform/middleware/request"
)

// Handlers groups the domain handlers mounted on the router.
type Handlers struct {
	Identity *identityhandler.Handler
	Pass     *passhandler.Handler
	PrintQ   *printqhandler.Handler
	Health   *health.Handler
}

// NewRouter wires all endpoints with middleware. Approver routes are gated
// behind bearer-token auth; everything else is reachable by the onboarding
// client.
func NewRouter(h Handlers, approverSigningKey, approverTokenHash string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))

	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Identity.Register(r)
	h.Pass.Register(r)
	h.PrintQ.RegisterOwner(r)

	r.Group(func(pr chi.Router) {
		pr.Use(approver.RequireApprover(approverSigningKey, approverTokenHash, logger))
		h.PrintQ.RegisterApprover(pr)
	})

	return r
}
