package models

import "time"

// MovementType classifies how a movement affects stock.
type MovementType string

const (
	MovementInflow     MovementType = "inflow"
	MovementOutflow    MovementType = "outflow"
	MovementAdjustment MovementType = "adjustment"
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInflow, MovementOutflow, MovementAdjustment:
		return true
	}
	return false
}

// MovementReason records why the stock changed.
type MovementReason string

const (
	ReasonSale    MovementReason = "sale"
	ReasonLoss    MovementReason = "loss"
	ReasonRestock MovementReason = "restock"
	ReasonReturn  MovementReason = "return"
)

// Valid reports whether r is one of the known reasons.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonSale, ReasonLoss, ReasonRestock, ReasonReturn:
		return true
	}
	return false
}

// Movement is one entry of the append-only stock journal. Entries are
// immutable once recorded; there is no update or delete path for them.
// ProductName is joined in for display and is not part of the stored row.
type Movement struct {
	ID            string         `json:"id"`
	ProductID     int            `json:"product_id"`
	ProductName   string         `json:"product_name,omitempty"`
	Type          MovementType   `json:"type"`
	Quantity      int            `json:"quantity"`
	PreviousStock int            `json:"previous_stock"`
	NewStock      int            `json:"new_stock"`
	Reason        MovementReason `json:"reason"`
	Notes         string         `json:"notes,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
