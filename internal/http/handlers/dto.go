package handlers

import (
	"time"

	"github.com/NathanielMuller/ScanShelf/internal/lookup"
	"github.com/NathanielMuller/ScanShelf/internal/models"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

type ProductResponse struct {
	Id          int     `json:"id"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Barcode     string  `json:"barcode"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand,omitempty"`
	Description string  `json:"description,omitempty"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"min_stock"`
	Price       float64 `json:"price"`
	ImageKey    string  `json:"image_key,omitempty"`
	Status      string  `json:"status"`
	LowStock    bool    `json:"low_stock,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Id:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Barcode:     p.Barcode,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		Price:       p.Price,
		ImageKey:    p.ImageKey,
		Status:      p.Status,
		LowStock:    p.LowStock(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

type Meta struct {
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more,omitempty"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta"`
}

type CategoryResponse struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func toCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		Id:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
	}
}

type MovementRequest struct {
	ProductID int    `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type MovementResponse struct {
	ID            string `json:"id"`
	ProductID     int    `json:"product_id"`
	ProductName   string `json:"product_name,omitempty"`
	Type          string `json:"type"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Reason        string `json:"reason"`
	Notes         string `json:"notes,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toMovementResponse(m models.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        string(m.Reason),
		Notes:         m.Notes,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

func toMovementResponses(movements []models.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = toMovementResponse(m)
	}
	return out
}

type MovementsSearchResult struct {
	Data []MovementResponse `json:"data"`
	Meta Meta               `json:"meta"`
}

type ResolutionResponse struct {
	Product    *ProductResponse `json:"product,omitempty"`
	Suggestion *lookup.Metadata `json:"suggestion,omitempty"`
}

type MetricsResponse struct {
	TotalProducts  int `json:"total_products"`
	TotalMovements int `json:"total_movements"`
	LowStockCount  int `json:"low_stock_count"`
}

func toMetricsResponse(m repo.Metrics) MetricsResponse {
	return MetricsResponse{
		TotalProducts:  m.TotalProducts,
		TotalMovements: m.TotalMovements,
		LowStockCount:  m.LowStockCount,
	}
}
