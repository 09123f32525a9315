package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Handlers groups the per-resource HTTP handlers.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Admin    *handler.AdminHandler
}

// Options configures the router.
type Options struct {
	Sessions middleware.SessionResolver
	// Metrics and Gatherer are optional; /metrics is served only when
	// Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> Metrics -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	}

	requireSession := middleware.Session(opts.Sessions, logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/admin/login", h.Auth.AdminLogin)

		r.Get("/products", h.Catalog.Products)
		r.Get("/products/{id}", h.Catalog.Product)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/orders", h.Catalog.Orders)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.Get)
				r.Delete("/", h.Cart.Clear)
				r.Post("/items", h.Cart.Add)
				r.Put("/items/{productID}", h.Cart.SetQuantity)
				r.Delete("/items/{productID}", h.Cart.Remove)
				r.Post("/items/{productID}/decrease", h.Cart.Decrease)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.Begin)
				r.Get("/", h.Checkout.Current)
				r.Delete("/", h.Checkout.Abandon)
				r.Put("/shipping", h.Checkout.Shipping)
				r.Put("/shipping-method", h.Checkout.ShippingMethod)
				r.Put("/payment", h.Checkout.Payment)
				r.Post("/promo", h.Checkout.ApplyPromo)
				r.Delete("/promo", h.Checkout.RemovePromo)
				r.Post("/back", h.Checkout.Back)
				r.Post("/edit/{step}", h.Checkout.Edit)
				r.Post("/submit", h.Checkout.Submit)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logger))

				r.Get("/products", h.Admin.Products)
				r.Post("/products", h.Admin.CreateProduct)
				r.Get("/products/{id}", h.Admin.Product)
				r.Put("/products/{id}", h.Admin.UpdateProduct)
				r.Delete("/products/{id}", h.Admin.DeleteProduct)

				r.Get("/orders", h.Admin.Orders)
				r.Put("/orders/{id}/status", h.Admin.UpdateOrderStatus)
				r.Put("/orders/{id}/verify", h.Admin.VerifyPayment)

				r.Get("/dashboard", h.Admin.Dashboard)
				r.Get("/reports/sales", h.Admin.SalesReport)
			})
		})
	})

	return r
}
