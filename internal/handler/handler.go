// Package handler exposes the store API over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alhussam/store-api/internal/assistant"
	"github.com/alhussam/store-api/internal/domain/cart"
	"github.com/alhussam/store-api/internal/domain/checkout"
	"github.com/alhussam/store-api/internal/domain/coupon"
	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/favorites"
	"github.com/alhussam/store-api/internal/domain/order"
	"github.com/alhussam/store-api/internal/domain/product"
	"github.com/alhussam/store-api/internal/domain/shipping"
	"github.com/alhussam/store-api/internal/domain/user"
)

// Handler wires the domain services into HTTP routes.
type Handler struct {
	products  product.Repository
	reviews   product.ReviewRepository
	carts     cart.Repository
	favorites favorites.Repository
	shippings shipping.Repository
	coupons   coupon.Repository
	evaluator coupon.Evaluator
	rates     currency.Repository
	users     *user.Service
	orders    *order.Service
	checkout  *checkout.Service
	assistant *assistant.Client
}

// Deps collects the handler's collaborators.
type Deps struct {
	Products  product.Repository
	Reviews   product.ReviewRepository
	Carts     cart.Repository
	Favorites favorites.Repository
	Shippings shipping.Repository
	Coupons   coupon.Repository
	Evaluator coupon.Evaluator
	Rates     currency.Repository
	Users     *user.Service
	Orders    *order.Service
	Checkout  *checkout.Service
	Assistant *assistant.Client
}

// New creates a Handler.
func New(d Deps) *Handler {
	return &Handler{
		products:  d.Products,
		reviews:   d.Reviews,
		carts:     d.Carts,
		favorites: d.Favorites,
		shippings: d.Shippings,
		coupons:   d.Coupons,
		evaluator: d.Evaluator,
		rates:     d.Rates,
		users:     d.Users,
		orders:    d.Orders,
		checkout:  d.Checkout,
		assistant: d.Assistant,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// Public.
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/products/{id}/reviews", h.listProductReviews)
		r.Get("/shipping-options", h.listShippingOptions)
		r.Get("/rates", h.getRates)
		r.Post("/assistant/chat", h.assistantChat)

		// Authenticated.
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/auth/logout", h.logout)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.addCartItem)
			r.Patch("/cart/items/{productID}", h.updateCartItem)
			r.Delete("/cart/items/{productID}", h.removeCartItem)
			r.Delete("/cart", h.clearCart)

			r.Post("/products/{id}/reviews", h.addProductReview)

			r.Get("/favorites", h.listFavorites)
			r.Post("/favorites/{productID}", h.toggleFavorite)

			r.Post("/checkout", h.placeOrder)
			r.Get("/orders", h.listOwnOrders)
			r.Get("/orders/{id}", h.getOwnOrder)

			r.Get("/me/addresses", h.listAddresses)
			r.Post("/me/addresses", h.addAddress)
			r.Put("/me/addresses/{id}", h.updateAddress)
			r.Delete("/me/addresses/{id}", h.deleteAddress)

			// Admin.
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)

				r.Post("/products", h.createProduct)
				r.Put("/products/{id}", h.updateProduct)
				r.Delete("/products/{id}", h.deleteProduct)

				r.Put("/rates", h.updateRates)

				r.Get("/coupons", h.listCoupons)
				r.Post("/coupons", h.createCoupon)
				r.Post("/coupons/validate", h.validateCoupon)
				r.Put("/coupons/{id}", h.updateCoupon)
				r.Delete("/coupons/{id}", h.deleteCoupon)

				r.Get("/admin/orders", h.listAllOrders)
				r.Patch("/admin/orders/{id}/status", h.updateOrderStatus)
				r.Delete("/admin/orders/{id}", h.deleteOrder)

				r.Get("/admin/export/products.csv", h.exportProducts)
			})
		})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})

	return r
}
