package models

import "time"

// Product statuses. Archived products keep their movement history but are
// hidden from the default catalog views.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Product represents a catalog entry in the inventory system. Stock is only
// ever written by the movement journal's transactional record path.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Barcode     string    `json:"barcode"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"min_stock"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ImageKey    string    `json:"image_key,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// LowStock reports whether the product is at or below its minimum level.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}
