package router

import (
	"net/http"

	"checkout-engine/internal/handler"
	"checkout-engine/internal/metrics"
	"checkout-engine/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Dependencies are the handlers and cross-cutting components the router wires.
type Dependencies struct {
	Checkout    *handler.CheckoutHandler
	Orders      *handler.OrderHandler
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	APIKey      string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(deps Dependencies, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS -> Metrics
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Handler)
			}
			r.Post("/checkout", deps.Checkout.Checkout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(deps.APIKey, logger))
			r.Get("/orders/pending-preference", deps.Orders.ListAwaitingPreference)
			r.Get("/orders/{id}", deps.Orders.GetByID)
			r.Post("/orders/{id}/preference", deps.Orders.RetryPreference)
		})
	})

	return r
}
