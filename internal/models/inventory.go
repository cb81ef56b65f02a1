package models

import "time"

type StockStatus string

const (
	StockGood StockStatus = "good"
	StockLow  StockStatus = "low"
	StockOut  StockStatus = "out"
)

// InventoryItem represents a supply item tracked by the school.
type InventoryItem struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"minStock"`
	Unit        string    `json:"unit"`
	Location    string    `json:"location"`
	LastUpdated time.Time `json:"lastUpdated"`
	Tags        string    `json:"tags,omitempty"`
	Owner       string    `json:"owner,omitempty"`
}

// StockStatusOf classifies a quantity against its reorder threshold.
func StockStatusOf(quantity, minStock int) StockStatus {
	if quantity <= 0 {
		return StockOut
	}
	if quantity <= minStock {
		return StockLow
	}
	return StockGood
}

func (i InventoryItem) Status() StockStatus {
	return StockStatusOf(i.Quantity, i.MinStock)
}

// NeedsRestock reports whether the item is low or out of stock.
func (i InventoryItem) NeedsRestock() bool {
	return i.Status() != StockGood
}

func (s StockStatus) Label() string {
	switch s {
	case StockOut:
		return "Out of Stock"
	case StockLow:
		return "Low Stock"
	default:
		return "In Stock"
	}
}
