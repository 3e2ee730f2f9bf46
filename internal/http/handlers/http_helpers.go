package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/NathanielMuller/ScanShelf/internal/codegen"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

// writeError translates domain errors into HTTP statuses. Unrecognized
// errors are logged and reported as a plain 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var verr *repo.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{verr.Field: verr.Reason})
		return
	}

	var cerr *repo.ConflictError
	if errors.As(err, &cerr) {
		writeJSON(w, http.StatusConflict, map[string]string{cerr.Field: fmt.Sprintf("%q is already in use", cerr.Value)})
		return
	}

	switch {
	case errors.Is(err, repo.ErrProductNotFound), errors.Is(err, repo.ErrCategoryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrInsufficientStock),
		errors.Is(err, repo.ErrProductHasMovements),
		errors.Is(err, repo.ErrCategoryInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, codegen.ErrGenerationExhausted):
		http.Error(w, "could not mint a unique barcode", http.StatusInternalServerError)
	default:
		logger.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
