package handlers

import (
	"net/http"
	"time"

	"github.com/NathanielMuller/ScanShelf/internal/models"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

// RecordMovementHandler appends one stock movement and returns the journal
// entry with its before and after stock levels.
func RecordMovementHandler(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	movement, err := journalSvc.Record(r.Context(), repo.MovementEntry{
		ProductID: req.ProductID,
		Type:      models.MovementType(req.Type),
		Quantity:  req.Quantity,
		Reason:    models.MovementReason(req.Reason),
		Notes:     req.Notes,
		UserID:    req.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMovementResponse(movement))
}

// GetRecentMovementsHandler returns the cached newest page of the journal.
func GetRecentMovementsHandler(w http.ResponseWriter, r *http.Request) {
	movements, err := journalSvc.Recent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementResponses(movements))
}

func parseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetMovementsHandler runs a filtered journal query.
func GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	since, err := parseTimePtr(q.Get("since"))
	if err != nil {
		http.Error(w, "since must be an RFC3339 timestamp", http.StatusBadRequest)
		return
	}
	until, err := parseTimePtr(q.Get("until"))
	if err != nil {
		http.Error(w, "until must be an RFC3339 timestamp", http.StatusBadRequest)
		return
	}

	filter := repo.MovementFilter{
		ProductID: parseIntPtr(q.Get("productId")),
		Since:     since,
		Until:     until,
		Offset:    parseIntPtr(q.Get("offset")),
		Limit:     parseIntPtr(q.Get("limit")),
	}
	if t := q.Get("type"); t != "" {
		mt := models.MovementType(t)
		if !mt.Valid() {
			http.Error(w, "unknown movement type", http.StatusBadRequest)
			return
		}
		filter.Type = &mt
	}
	if re := q.Get("reason"); re != "" {
		mr := models.MovementReason(re)
		if !mr.Valid() {
			http.Error(w, "unknown movement reason", http.StatusBadRequest)
			return
		}
		filter.Reason = &mr
	}

	result, err := journalSvc.Query(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MovementsSearchResult{
		Data: toMovementResponses(result.Movements),
		Meta: Meta{TotalCount: result.TotalCount},
	})
}

// GetMovementStatsHandler aggregates the journal by type and reason,
// optionally restricted to a date range.
func GetMovementStatsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	since, err := parseTimePtr(q.Get("since"))
	if err != nil {
		http.Error(w, "since must be an RFC3339 timestamp", http.StatusBadRequest)
		return
	}
	until, err := parseTimePtr(q.Get("until"))
	if err != nil {
		http.Error(w, "until must be an RFC3339 timestamp", http.StatusBadRequest)
		return
	}

	stats, err := journalSvc.Stats(r.Context(), since, until)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
