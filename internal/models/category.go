package models

// Category groups products and carries the 3-letter code used when minting
// SKUs. Categories referenced by products are deactivated, never removed.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"is_active"`
}
