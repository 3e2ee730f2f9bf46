// Package http mounts the REST surface over the catalog and journal
// services.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NathanielMuller/ScanShelf/internal/http/handlers"
	rl "github.com/NathanielMuller/ScanShelf/internal/http/rate_limiter"
)

// RouterConfig carries the optional middleware collaborators.
type RouterConfig struct {
	RateLimiter *rl.Registry // nil disables limiting
	Logger      zerolog.Logger
}

// NewRouter builds the route table.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogMiddleware(cfg.Logger))
	if cfg.RateLimiter != nil {
		r.Use(RateLimitMiddleware(cfg.RateLimiter))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/products", handlers.CreateProductHandler)
	r.Get("/products", handlers.GetProductsHandler)
	r.Get("/products/search", handlers.FilterProductsHandler)
	r.Get("/products/low-stock", handlers.GetLowStockHandler)
	r.Get("/products/sku/{sku}", handlers.GetProductBySKUHandler)
	r.Get("/products/barcode/{barcode}", handlers.GetProductByBarcodeHandler)
	r.Get("/products/{id}", handlers.GetProductByIDHandler)
	r.Put("/products/{id}", handlers.UpdateProductHandler)
	r.Delete("/products/{id}", handlers.DeleteProductHandler)

	r.Get("/categories", handlers.GetCategoriesHandler)
	r.Post("/categories", handlers.CreateCategoryHandler)
	r.Put("/categories/{id}", handlers.UpdateCategoryHandler)
	r.Delete("/categories/{id}", handlers.DeactivateCategoryHandler)

	r.Post("/movements", handlers.RecordMovementHandler)
	r.Get("/movements", handlers.GetMovementsHandler)
	r.Get("/movements/recent", handlers.GetRecentMovementsHandler)
	r.Get("/movements/stats", handlers.GetMovementStatsHandler)

	r.Get("/scan/{barcode}", handlers.ResolveBarcodeHandler)
	r.Get("/metrics", handlers.GetMetricsHandler)

	return r
}
