package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Designs  *DesignsHandler
	Exchange *ExchangeHandler
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	MaxRequestBodySize int64
	HealthChecks       map[string]HealthCheck
}

const healthCheckTimeout = 2 * time.Second

// NewRouter mounts the storefront API under /api/v1.
func NewRouter(h Handlers, cfg RouterConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", healthHandler(cfg.HealthChecks, log))
	r.Handle("/metrics", promhttp.Handler())

	// handlers bound their own calls with RequestTimeout; the tracking socket is long-lived
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shop/pricing-policy", h.Checkout.PricingPolicy)

		r.Group(func(r chi.Router) {
			r.Use(OptionalAuthMiddleware)
			r.Post("/contact", h.Exchange.SubmitContact)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware)

			r.Get("/cart", h.Checkout.PreviewCart)

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.Begin)
				r.Route("/{checkout_id}", func(r chi.Router) {
					r.Get("/", h.Checkout.Get)
					r.Put("/delivery", h.Checkout.UpdateDelivery)
					r.Put("/payment", h.Checkout.UpdatePayment)
					r.Post("/advance", h.Checkout.Advance)
					r.Post("/retreat", h.Checkout.Retreat)
					r.Post("/edit/{step}", h.Checkout.Edit)
					r.Post("/submit", h.Checkout.Submit)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Orders.ListOrders)
				r.Get("/{order_id}", h.Orders.GetOrder)
				r.Get("/{order_id}/tracking", h.Orders.GetTracking)
				r.Get("/{order_id}/track", h.Orders.TrackOrder)
			})

			r.Route("/designs", func(r chi.Router) {
				r.Post("/", h.Designs.Start)
				r.Get("/saved", h.Designs.ListSaved)
				r.Get("/saved/{design_id}", h.Designs.GetSaved)
				r.Route("/{design_id}", func(r chi.Router) {
					r.Get("/", h.Designs.Get)
					r.Post("/changes", h.Designs.Change)
					r.Post("/undo", h.Designs.Undo)
					r.Post("/redo", h.Designs.Redo)
					r.Post("/save", h.Designs.Save)
				})
			})

			r.Get("/exchange/listings", h.Exchange.ListListings)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

// healthHandler answers 503 when any dependency check fails.
func healthHandler(checks map[string]HealthCheck, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				results[name] = "down"
				status, code = "unavailable", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		respondJSON(w, code, map[string]any{"status": status, "checks": results})
	}
}
