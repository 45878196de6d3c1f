package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/minhtran-dev/vnshop-order-service/internal/api/handlers"
	"github.com/minhtran-dev/vnshop-order-service/internal/api/middleware"
	"github.com/minhtran-dev/vnshop-order-service/internal/service"
	"github.com/minhtran-dev/vnshop-order-service/pkg/metrics"
)

// NewRouter wires the HTTP surface of the order service.
func NewRouter(
	checkout *service.CheckoutService,
	orders *service.OrderService,
	coupons *service.CouponService,
	m *metrics.ServerMetrics,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Identity)

	orderHandler := handlers.NewOrderHandler(checkout, orders)
	couponHandler := handlers.NewCouponHandler(coupons)

	r.Route("/api/orders", func(r chi.Router) {
		// The gateway cannot present buyer credentials; this route's safety
		// rests on order ids being unguessable.
		r.Post("/verify", orderHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/", orderHandler.Place)
			r.Get("/", orderHandler.List)
			r.Get("/mine", orderHandler.Mine)
			r.Get("/{id}", orderHandler.Get)
			r.Post("/{id}/cancel", orderHandler.Cancel)
			r.Patch("/{id}/status", orderHandler.UpdateStatus)
		})
	})

	r.Route("/api/coupons", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/apply", couponHandler.Apply)
		r.Get("/available", couponHandler.Available)
	})

	r.Route("/api/admin/coupons", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Use(middleware.RequireAdmin)
		r.Post("/", couponHandler.Create)
		r.Get("/", couponHandler.List)
		r.Get("/stats", couponHandler.Stats)
		r.Get("/{id}", couponHandler.Get)
		r.Put("/{id}", couponHandler.Update)
		r.Delete("/{id}", couponHandler.Delete)
		r.Patch("/{id}/toggle", couponHandler.Toggle)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
