package router

import (
	"net/http"

	"shopcore/internal/handler"
	"shopcore/internal/metrics"
	"shopcore/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> RealIP -> Recovery -> Logging -> Metrics -> CORS -> APIKeyAuth
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/payments/webhook", h.Payment.Webhook)
		r.Post("/payments/intent", h.Payment.CreateIntent)

		r.Route("/carts", func(r chi.Router) {
			r.Post("/items", h.Cart.AddItem)
			r.Post("/{cartID}/items", h.Cart.AddItem)
			r.Patch("/{cartID}/items/{productID}", h.Cart.UpdateItem)
			r.Delete("/{cartID}/items/{productID}", h.Cart.RemoveItem)
			r.Get("/{cartID}", h.Cart.Get)
		})

		r.With(middleware.Identify(logger)).Post("/checkout", h.Checkout.Checkout)
		r.Get("/orders/{orderID}", h.Order.GetByID)
	})

	return r
}
