package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathanielMuller/ScanShelf/internal/codegen"
)

// ResolveBarcodeHandler answers a barcode scan: the catalog product when
// the code is known, an external metadata suggestion when it is not, or an
// empty body when neither has an answer.
func ResolveBarcodeHandler(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	if !codegen.ValidateBarcode(barcode) {
		http.Error(w, "barcode is not a valid EAN-13 code", http.StatusBadRequest)
		return
	}

	res, err := catalogSvc.Resolve(r.Context(), barcode)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ResolutionResponse{Suggestion: res.Suggestion}
	if res.Product != nil {
		pr := toProductResponse(*res.Product)
		resp.Product = &pr
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMetricsHandler returns the dashboard summary counts.
func GetMetricsHandler(w http.ResponseWriter, r *http.Request) {
	metrics, err := journalSvc.Metrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMetricsResponse(metrics))
}
