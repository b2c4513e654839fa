// Package httptransport assembles the HTTP surface: middleware chain, domain
// handlers, health, and metrics. It owns no business logic; handlers delegate
// to the services wired in at startup.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	donationhandler "givechain/internal/donation/handler"
	"givechain/internal/platform/metrics"
	"givechain/internal/platform/middleware"
	registryhandler "givechain/internal/registry/handler"
)

const requestTimeout = 15 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Donations     *donationhandler.Handler
	Registry      *registryhandler.Handler
	JWTSigningKey string
	Ready         func() error
}

// NewRouter builds the full middleware chain and mounts every endpoint.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	deps.Donations.Register(r)
	deps.Registry.Register(r)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(deps.JWTSigningKey, deps.Logger))
		deps.Registry.RegisterAdmin(r)
	})

	r.Get("/healthz", handleHealth(deps.Ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func handleHealth(ready func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready != nil {
			if err := ready(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
