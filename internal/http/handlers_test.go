package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NathanielMuller/ScanShelf/internal/cache"
	"github.com/NathanielMuller/ScanShelf/internal/catalog"
	api "github.com/NathanielMuller/ScanShelf/internal/http"
	"github.com/NathanielMuller/ScanShelf/internal/http/handlers"
	"github.com/NathanielMuller/ScanShelf/internal/journal"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := repo.NewMemoryStore()
	coordinator := cache.NewCoordinator()
	catalogSvc := catalog.NewService(catalog.Config{
		Products:   store.Products(),
		Categories: store.Categories(),
		Movements:  store.Movements(),
		Cache:      coordinator,
		Logger:     zerolog.Nop(),
	})
	journalSvc := journal.NewService(journal.Config{
		Movements: store.Movements(),
		Products:  store.Products(),
		Cache:     coordinator,
		Logger:    zerolog.Nop(),
	})

	handlers.SetCatalogService(catalogSvc)
	handlers.SetJournalService(journalSvc)
	handlers.SetLogger(zerolog.Nop())

	return api.NewRouter(api.RouterConfig{Logger: zerolog.Nop()})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(t *testing.T, r http.Handler, body map[string]any) handlers.ProductResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp handlers.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestCreateProductHandler(t *testing.T) {
	r := newTestRouter(t)

	resp := createProduct(t, r, map[string]any{
		"name":     "Laptop Stand",
		"category": "Electronics",
		"brand":    "Logitech",
		"price":    45.0,
		"stock":    10,
	})

	assert.Equal(t, "Laptop Stand", resp.Name)
	assert.Equal(t, "ELE-LOG-001", resp.SKU)
	assert.NotEmpty(t, resp.Barcode)
	assert.Equal(t, "active", resp.Status)
}

func TestCreateProductHandler_MalformedJSON(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"name": "Broken"`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductHandler_ValidationError(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/products", map[string]any{"category": "Food"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp, "name")
}

func TestCreateProductHandler_DuplicateSKU(t *testing.T) {
	r := newTestRouter(t)

	createProduct(t, r, map[string]any{
		"name": "First", "category": "Office", "sku": "OFF-GEN-001",
	})
	w := doJSON(t, r, http.MethodPost, "/products", map[string]any{
		"name": "Second", "category": "Office", "sku": "OFF-GEN-001",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetProductByIDHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{"name": "Mug", "category": "Home"})

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/products/%d", created.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, created.Id, resp.Id)

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/999999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetProductByCodeHandlers(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{"name": "Mug", "category": "Home"})

	w := doJSON(t, r, http.MethodGet, "/products/sku/"+created.SKU, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/products/barcode/"+created.Barcode, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/products/sku/HOM-XXX-999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProductHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{
		"name": "Mug", "category": "Home", "price": 8.0, "stock": 4,
	})

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/products/%d", created.Id), map[string]any{
		"price": 9.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 9.5, resp.Price)
	assert.Equal(t, "Mug", resp.Name)
	assert.Equal(t, 4, resp.Stock)
}

func TestDeleteProductHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{"name": "Mug", "category": "Home"})

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/products/%d", created.Id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/products/%d", created.Id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProductHandler_ArchivesWithHistory(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{
		"name": "Mug", "category": "Home", "stock": 10,
	})

	w := doJSON(t, r, http.MethodPost, "/movements", map[string]any{
		"product_id": created.Id, "type": "outflow", "quantity": 1, "reason": "sale",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/products/%d", created.Id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/products/%d", created.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "archived", resp.Status)
}

func TestFilterProductsHandler(t *testing.T) {
	r := newTestRouter(t)
	for _, p := range []map[string]any{
		{"name": "Phone", "category": "Electronics", "stock": 10},
		{"name": "Laptop", "category": "Electronics", "stock": 5},
		{"name": "Mouse Pad", "category": "Office", "stock": 50},
	} {
		createProduct(t, r, p)
	}

	t.Run("by category", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/search?category=Electronics", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.ProductsSearchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, 2, resp.Meta.TotalCount)
	})

	t.Run("pagination", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/search?limit=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.ProductsSearchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, 3, resp.Meta.TotalCount)
		assert.True(t, resp.Meta.HasMore)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/search?limit=0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLowStockHandler(t *testing.T) {
	r := newTestRouter(t)
	createProduct(t, r, map[string]any{
		"name": "Plenty", "category": "Food", "stock": 100, "min_stock": 5,
	})
	low := createProduct(t, r, map[string]any{
		"name": "Scarce", "category": "Food", "stock": 2, "min_stock": 5,
	})

	w := doJSON(t, r, http.MethodGet, "/products/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []handlers.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, low.Id, resp[0].Id)
	assert.True(t, resp[0].LowStock)
}

func TestRecordMovementHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{
		"name": "Mug", "category": "Home", "stock": 10,
	})

	w := doJSON(t, r, http.MethodPost, "/movements", map[string]any{
		"product_id": created.Id, "type": "inflow", "quantity": 5, "reason": "restock",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handlers.MovementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 10, resp.PreviousStock)
	assert.Equal(t, 15, resp.NewStock)
	assert.NotEmpty(t, resp.ID)

	t.Run("insufficient stock", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/movements", map[string]any{
			"product_id": created.Id, "type": "outflow", "quantity": 100, "reason": "sale",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/movements", map[string]any{
			"product_id": created.Id, "type": "teleport", "quantity": 1, "reason": "sale",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/movements", map[string]any{
			"product_id": 999999, "type": "inflow", "quantity": 1, "reason": "restock",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetMovementsHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{
		"name": "Mug", "category": "Home", "stock": 10,
	})
	other := createProduct(t, r, map[string]any{
		"name": "Plate", "category": "Home", "stock": 10,
	})

	for _, m := range []map[string]any{
		{"product_id": created.Id, "type": "inflow", "quantity": 5, "reason": "restock"},
		{"product_id": created.Id, "type": "outflow", "quantity": 2, "reason": "sale"},
		{"product_id": other.Id, "type": "outflow", "quantity": 1, "reason": "loss"},
	} {
		w := doJSON(t, r, http.MethodPost, "/movements", m)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("by product", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/movements?productId=%d", created.Id), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.MovementsSearchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("by type", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/movements?type=outflow", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.MovementsSearchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("unknown type", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/movements?type=teleport", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad since", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/movements?since=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("recent", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/movements/recent", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp []handlers.MovementResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp, 3)
	})

	t.Run("stats", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/movements/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp repo.MovementStats
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 3, resp.Total)
	})
}

func TestCategoryHandlers(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/categories", map[string]any{"name": "Garden"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created handlers.CategoryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "GAR", created.Code)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/categories/%d", created.Id), map[string]any{
		"name": "Garden", "code": "GRD",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/categories/%d", created.Id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []handlers.CategoryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)
}

func TestResolveBarcodeHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{
		"name": "Pen", "category": "Office", "barcode": "4006381333931",
	})

	t.Run("known barcode", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/scan/4006381333931", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.ResolutionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Product)
		assert.Equal(t, created.Id, resp.Product.Id)
	})

	t.Run("unknown barcode", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/scan/4006381333948", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.ResolutionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Nil(t, resp.Product)
		assert.Nil(t, resp.Suggestion)
	})

	t.Run("bad checksum", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/scan/4006381333932", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricsHandler(t *testing.T) {
	r := newTestRouter(t)
	created := createProduct(t, r, map[string]any{
		"name": "Mug", "category": "Home", "stock": 10,
	})
	w := doJSON(t, r, http.MethodPost, "/movements", map[string]any{
		"product_id": created.Id, "type": "outflow", "quantity": 1, "reason": "sale",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.MetricsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalProducts)
	assert.Equal(t, 1, resp.TotalMovements)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
