package repo

import (
	"time"

	"github.com/NathanielMuller/ScanShelf/internal/models"
)

// MovementFilter narrows journal queries. All fields are optional; results
// are always ordered by creation time, newest first.
type MovementFilter struct {
	ProductID *int
	Type      *models.MovementType
	Reason    *models.MovementReason
	Since     *time.Time
	Until     *time.Time
	Offset    *int
	Limit     *int
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
