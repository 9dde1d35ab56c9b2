package httpapi

import (
	"context"
	"net/http"
	"time"

	"pizzeria-be/internal/address"
	"pizzeria-be/internal/cart"
	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/metrics"
	"pizzeria-be/internal/middleware"
	"pizzeria-be/internal/order"
	"pizzeria-be/internal/promotion"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type AddressLookup interface {
	Lookup(ctx context.Context, postalCode string) (*address.Address, error)
}

type Authenticator interface {
	middleware.TokenParser
	Login(ctx context.Context, password string) (string, time.Time, error)
}

type Deps struct {
	Catalog    catalog.Service
	Promotions promotion.Service
	Customers  customer.Service
	Carts      cart.Service
	Orders     order.Service
	Addresses  AddressLookup
	Auth       Authenticator
	Metrics    *metrics.Checkout
	Limiter    *middleware.RateLimiter

	CORSOrigin   string
	SecureCookie bool
}

type Handler struct {
	Deps
}

// NewRouter wires storefront and back-office routes.
func NewRouter(d Deps) http.Handler {
	if d.Limiter == nil {
		d.Limiter = middleware.NewRateLimiter("")
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewCheckout()
	}
	h := &Handler{Deps: d}

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.CORSOrigin))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session)
		r.Use(d.Limiter.Middleware)

		r.Get("/menu", h.menu)
		r.Get("/modifiers", h.modifiers)
		r.Get("/address/{cep}", h.lookupAddress)
		r.Get("/cashback/{phone}", h.cashbackBalance)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.viewCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addItem)
			r.Patch("/items/{itemID}", h.updateItem)
			r.Delete("/items/{itemID}", h.removeItem)
			r.Post("/coupon", h.applyCoupon)
			r.Delete("/coupon", h.removeCoupon)
			r.Put("/cashback", h.setCashback)
			r.Put("/fulfillment", h.setFulfillment)
			r.Put("/gift", h.chooseGift)
		})

		r.Post("/checkout", h.checkout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(d.Limiter.Middleware).Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(d.Auth))
			r.Use(d.Limiter.Middleware)

			r.Get("/categories", h.listCategories)
			r.Post("/categories", h.createCategory)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Post("/", h.createProduct)
				r.Get("/{productID}", h.getProduct)
				r.Put("/{productID}", h.updateProduct)
				r.Patch("/{productID}/availability", h.setAvailability)
				r.Delete("/{productID}", h.deleteProduct)
			})

			r.Route("/modifiers", func(r chi.Router) {
				r.Get("/", h.listModifiers)
				r.Post("/", h.createModifier)
				r.Put("/{modifierID}", h.updateModifier)
				r.Delete("/{modifierID}", h.deleteModifier)
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", h.listCoupons)
				r.Post("/", h.createCoupon)
				r.Patch("/{couponID}/active", h.setCouponActive)
				r.Delete("/{couponID}", h.deleteCoupon)
			})

			r.Get("/promotion", h.getRule)
			r.Put("/promotion", h.updateRule)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.listOrders)
				r.Get("/{orderID}", h.getOrder)
				r.Patch("/{orderID}/status", h.updateOrderStatus)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.listCustomers)
				r.Get("/{customerID}", h.getCustomer)
				r.Post("/{customerID}/cashback", h.adjustCashback)
			})

			r.Get("/metrics", h.metrics)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
