package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Address  *AddressHandler
	Catalog  *CatalogHandler
	Geo      *GeoHandler
}

func NewRouter(h Handlers, log zerolog.Logger, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Get("/summary", h.Cart.GetSummary)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{line_id}", h.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.Checkout.GetState)
			r.Post("/advance", h.Checkout.Advance)
			r.Post("/return", h.Checkout.Return)
			r.Put("/address", h.Checkout.SelectAddress)
			r.Put("/shipping", h.Checkout.SelectShipping)
			r.Put("/payment", h.Checkout.SelectPayment)
			r.Post("/payment-intent", h.Checkout.RequestIntent)
			r.Post("/confirm", h.Checkout.Confirm)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.Address.List)
			r.Post("/", h.Address.Create)
			r.Put("/{id}", h.Address.Update)
			r.Delete("/{id}", h.Address.Delete)
		})

		r.Route("/geo", func(r chi.Router) {
			r.Get("/provinces", h.Geo.Provinces)
			r.Get("/provinces/{province_id}/districts", h.Geo.Districts)
			r.Get("/provinces/{province_id}/districts/{district_id}/sub-districts", h.Geo.SubDistricts)
		})

		r.Get("/products", h.Catalog.Products)
		r.Get("/products/featured", h.Catalog.Featured)
		r.Get("/products/{id}", h.Catalog.Product)
		r.Get("/products/{id}/related", h.Catalog.Related)
		r.Get("/categories", h.Catalog.Categories)
		r.Get("/brands", h.Catalog.Brands)
	})

	return r
}
