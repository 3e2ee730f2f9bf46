package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NathanielMuller/ScanShelf/internal/catalog"
)

// GetCategoriesHandler lists all categories, active and inactive.
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := catalogSvc.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCategoryHandler adds a category. An empty code is derived from
// the name.
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req catalog.CategoryInput
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	created, err := catalogSvc.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

// UpdateCategoryHandler modifies a category's fields.
func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}

	var req catalog.CategoryInput
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := catalogSvc.UpdateCategory(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

// DeactivateCategoryHandler soft-disables a category.
func DeactivateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}

	if err := catalogSvc.DeactivateCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
