package dashboard

import (
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
)

const (
	// EstimatedUnitValue is the flat per-unit value used for the inventory estimate.
	EstimatedUnitValue = 10

	StockLevelLimit   = 10
	LowStockListLimit = 10
	chartLabelRunes   = 15
)

type Band string

const (
	BandCritical Band = "critical"
	BandModerate Band = "moderate"
	BandHealthy  Band = "healthy"
)

// BandOf places a quantity in the color range of the stock level chart.
func BandOf(quantity int) Band {
	switch {
	case quantity <= 10:
		return BandCritical
	case quantity <= 50:
		return BandModerate
	}
	return BandHealthy
}

type CategorySlice struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StockLevel struct {
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
	Band     Band   `json:"band"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Report struct {
	TotalItems           int                    `json:"totalItems"`
	EstimatedValue       int                    `json:"estimatedValue"`
	LowStockCount        int                    `json:"lowStockCount"`
	OutOfStockCount      int                    `json:"outOfStockCount"`
	RequestStatus        listing.StatusCounts   `json:"requestStatus"`
	CategoryDistribution []CategorySlice        `json:"categoryDistribution"`
	StockLevels          []StockLevel           `json:"stockLevels"`
	LowStockItems        []models.InventoryItem `json:"lowStockItems"`
	MonthlyRequests      []MonthCount           `json:"monthlyRequests"`
}

// BuildReport computes the reports page. Monthly request counts cover the
// calendar year of now.
func BuildReport(items []models.InventoryItem, requests []models.Request, categories []models.Category, now time.Time) Report {
	r := Report{
		TotalItems:           len(items),
		RequestStatus:        listing.CountStatuses(requests),
		CategoryDistribution: make([]CategorySlice, 0, len(categories)),
		StockLevels:          []StockLevel{},
		LowStockItems:        []models.InventoryItem{},
		MonthlyRequests:      MonthlyRequests(requests, now.Year()),
	}

	for _, it := range items {
		r.EstimatedValue += it.Quantity * EstimatedUnitValue
		if isLow(it) {
			r.LowStockCount++
			if len(r.LowStockItems) < LowStockListLimit {
				r.LowStockItems = append(r.LowStockItems, it)
			}
		}
		if isOut(it) {
			r.OutOfStockCount++
		}
		if len(r.StockLevels) < StockLevelLimit {
			r.StockLevels = append(r.StockLevels, StockLevel{
				Label:    ChartLabel(it.Name),
				Quantity: it.Quantity,
				Band:     BandOf(it.Quantity),
			})
		}
	}

	for _, o := range Overview(items, categories) {
		r.CategoryDistribution = append(r.CategoryDistribution, CategorySlice{Name: o.Name, Count: o.ItemCount})
	}
	return r
}

// ChartLabel shortens names longer than 15 characters to their first 15 followed by "...".
func ChartLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= chartLabelRunes {
		return name
	}
	return string(runes[:chartLabelRunes]) + "..."
}

func MonthlyRequests(requests []models.Request, year int) []MonthCount {
	out := make([]MonthCount, 12)
	for m := range out {
		out[m].Month = time.Month(m + 1).String()[:3]
	}
	for _, r := range requests {
		if r.RequestDate.Year() == year {
			out[r.RequestDate.Month()-1].Count++
		}
	}
	return out
}
