package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/infra/httpx/middlewares"
	"github.com/jcmexdev/cafekiosk/internal/pkg/metrics"
)

// NewRouter wires the API routes. m and metricsHandler may be nil.
func NewRouter(handler *Handler, m *metrics.ServerMetrics, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Trace)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	// Outside Recoverer so requests that panic are counted as 500s.
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products/new", handler.CreateProduct)
		r.Get("/products/selling", handler.GetSellingProducts)

		r.Post("/orders/new", handler.CreateOrder)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Patch("/orders/{id}/status", handler.ChangeOrderStatus)
	})
	return r
}
