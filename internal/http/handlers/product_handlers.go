package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NathanielMuller/ScanShelf/internal/catalog"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

// CreateProductHandler adds a product to the catalog. Missing sku and
// barcode fields are minted server-side.
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateProductInput
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	created, err := catalogSvc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler lists the full catalog.
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := catalogSvc.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// GetProductByIDHandler fetches one product.
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := catalogSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// GetProductBySKUHandler is the exact-match SKU lookup.
func GetProductBySKUHandler(w http.ResponseWriter, r *http.Request) {
	product, err := catalogSvc.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// GetProductByBarcodeHandler is the exact-match barcode lookup.
func GetProductByBarcodeHandler(w http.ResponseWriter, r *http.Request) {
	product, err := catalogSvc.GetByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler applies a partial update. Stock is not updatable
// here; stock changes go through movements.
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	var req catalog.UpdateProductInput
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := catalogSvc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(updated))
}

// DeleteProductHandler removes a product, or archives it when it owns
// movement history.
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	if err := catalogSvc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLowStockHandler lists active products at or below their minimum.
func GetLowStockHandler(w http.ResponseWriter, r *http.Request) {
	products, err := catalogSvc.LowStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func parseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// FilterProductsHandler runs the filtered, ordered, paginated search.
func FilterProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repo.ProductFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		MinStock: parseIntPtr(q.Get("minStock")),
		MaxStock: parseIntPtr(q.Get("maxStock")),
		OrderBy:  q.Get("orderBy"),
		Desc:     q.Get("desc") == "true",
		Offset:   parseIntPtr(q.Get("offset")),
		Limit:    parseIntPtr(q.Get("limit")),
	}

	if filter.Limit != nil && *filter.Limit <= 0 {
		http.Error(w, "limit must be greater than zero", http.StatusBadRequest)
		return
	}
	if filter.Offset != nil && *filter.Offset < 0 {
		http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
		return
	}

	result, err := catalogSvc.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductsSearchResult{
		Data: toProductResponses(result.Products),
		Meta: Meta{TotalCount: result.TotalCount, HasMore: result.HasMore},
	})
}
