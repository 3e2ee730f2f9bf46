package repo

import (
	"github.com/NathanielMuller/ScanShelf/internal/models"
)

// MovementEntry is the input of the journal's record operation.
type MovementEntry struct {
	ProductID int
	Type      models.MovementType
	// Quantity is the delta for inflow/outflow, or the absolute target
	// stock value for adjustment.
	Quantity int
	Reason   models.MovementReason
	Notes    string
	UserID   string
}

// TypeStats aggregates the movements of one type or reason.
type TypeStats struct {
	Count    int `json:"count"`
	Quantity int `json:"quantity"`
}

// MovementStats holds counts and quantity sums grouped by type and reason
// over a filtered movement set.
type MovementStats struct {
	Total    int                                  `json:"total"`
	ByType   map[models.MovementType]TypeStats   `json:"by_type"`
	ByReason map[models.MovementReason]TypeStats `json:"by_reason"`
}

// Metrics is the dashboard summary served to the front end.
type Metrics struct {
	TotalProducts  int `json:"total_products"`
	TotalMovements int `json:"total_movements"`
	LowStockCount  int `json:"low_stock_count"`
}

// MovementRepository defines the interface for the append-only stock journal.
//
// Record must execute atomically: read the product's current stock, compute
// the new value, insert the journal row and update the product's stock field
// as one transaction. Concurrent records against the same product serialize.
// Entries are never updated or deleted once committed.
type MovementRepository interface {
	Record(entry MovementEntry) (models.Movement, error)
	Query(mf MovementFilter) ([]models.Movement, int, error)
	Stats(mf MovementFilter) (MovementStats, error)
	CountByProduct(productID int) (int, error)
	Metrics() (Metrics, error)
}
