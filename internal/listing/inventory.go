package listing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

// All is the filter value that disables a category, location or status filter.
const All = "all"

type StockFilter string

const (
	StockAll  StockFilter = "all"
	StockLow  StockFilter = "low"
	StockOut  StockFilter = "out"
	StockGood StockFilter = "good"
)

func ParseStockFilter(s string) (StockFilter, error) {
	switch f := StockFilter(strings.ToLower(s)); f {
	case "":
		return StockAll, nil
	case StockAll, StockLow, StockOut, StockGood:
		return f, nil
	}
	return "", fmt.Errorf("invalid stock filter %q", s)
}

// InventoryFilter is the conjunction of the inventory list controls.
// Zero values disable the corresponding predicate.
type InventoryFilter struct {
	Search      string
	Category    string
	Location    string
	From        *time.Time
	To          *time.Time
	MinQuantity *int
	Stock       StockFilter
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Matches reports whether an item passes every active predicate.
func (f InventoryFilter) Matches(it models.InventoryItem) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(it.Name), term) && !strings.Contains(strings.ToLower(it.Location), term) {
			return false
		}
	}
	if !isAll(f.Category) && it.Category != f.Category {
		return false
	}
	if !isAll(f.Location) && it.Location != f.Location {
		return false
	}
	if f.From != nil && it.LastUpdated.Before(*f.From) {
		return false
	}
	if f.To != nil && it.LastUpdated.After(*f.To) {
		return false
	}
	if f.MinQuantity != nil && it.Quantity < *f.MinQuantity {
		return false
	}
	switch f.Stock {
	case StockLow:
		// out of stock items count as low too
		return it.Quantity <= it.MinStock
	case StockOut:
		return it.Quantity == 0
	case StockGood:
		return it.Status() == models.StockGood
	}
	return true
}

// FilterInventory returns the items that pass the filter, in their original order.
func FilterInventory(items []models.InventoryItem, f InventoryFilter) []models.InventoryItem {
	out := make([]models.InventoryItem, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// SortInventory returns a stably sorted copy. An unknown key leaves the order unchanged.
func SortInventory(items []models.InventoryItem, s Sort) []models.InventoryItem {
	out := slices.Clone(items)
	by := inventoryComparator(s.Key)
	if by == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b models.InventoryItem) int {
		return s.apply(by(a, b))
	})
	return out
}

func inventoryComparator(key string) func(a, b models.InventoryItem) int {
	switch key {
	case "name":
		return func(a, b models.InventoryItem) int { return compareText(a.Name, b.Name) }
	case "category":
		return func(a, b models.InventoryItem) int { return compareText(a.Category, b.Category) }
	case "quantity":
		return func(a, b models.InventoryItem) int { return compareInt(a.Quantity, b.Quantity) }
	case "minStock":
		return func(a, b models.InventoryItem) int { return compareInt(a.MinStock, b.MinStock) }
	case "location":
		return func(a, b models.InventoryItem) int { return compareText(a.Location, b.Location) }
	case "unit":
		return func(a, b models.InventoryItem) int { return compareText(a.Unit, b.Unit) }
	case "lastUpdated":
		return func(a, b models.InventoryItem) int { return compareTime(a.LastUpdated, b.LastUpdated) }
	}
	return nil
}

// VisibleInventory filters then sorts.
func VisibleInventory(items []models.InventoryItem, f InventoryFilter, s Sort) []models.InventoryItem {
	return SortInventory(FilterInventory(items, f), s)
}

// AvailableLocations lists the distinct non-empty locations, sorted.
func AvailableLocations(items []models.InventoryItem) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, it := range items {
		if it.Location != "" && !seen[it.Location] {
			seen[it.Location] = true
			out = append(out, it.Location)
		}
	}
	slices.Sort(out)
	return out
}

// ParseDate reads a "from"/"to" bound. RFC 3339 timestamps are taken as is;
// a bare date is the start of that day, or its last instant when endOfDay is set
// so that an inclusive range covers the whole day.
func ParseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
