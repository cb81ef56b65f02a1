// Package dashboard derives the summary figures and chart series shown on
// the dashboard and reports pages from already loaded collections.
package dashboard

import (
	"slices"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
)

const (
	RecentActivityLimit = 5
	PendingPreviewLimit = 4
)

type ActivityKind string

const (
	ActivityItem    ActivityKind = "item"
	ActivityRequest ActivityKind = "request"
)

// Activity is one entry of the recent activity feed: an item update or a request.
type Activity struct {
	Kind   ActivityKind `json:"kind"`
	ID     int          `json:"id"`
	Title  string       `json:"title"`
	Detail string       `json:"detail"`
	Status string       `json:"status"`
	At     time.Time    `json:"at"`
}

type PendingRequest struct {
	models.Request
	ItemName string `json:"itemName"`
}

// CategoryOverview is derived from the inventory at summary time; the stored
// category item count is not consulted.
type CategoryOverview struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	ItemCount     int    `json:"itemCount"`
	LowStockCount int    `json:"lowStockCount"`
}

type Summary struct {
	TotalItems      int                `json:"totalItems"`
	LowStockCount   int                `json:"lowStockCount"`
	OutOfStockCount int                `json:"outOfStockCount"`
	PendingCount    int                `json:"pendingCount"`
	CategoryCount   int                `json:"categoryCount"`
	RecentActivity  []Activity         `json:"recentActivity"`
	PendingPreview  []PendingRequest   `json:"pendingPreview"`
	Categories      []CategoryOverview `json:"categories"`
}

func isLow(it models.InventoryItem) bool {
	return it.Quantity <= it.MinStock
}

func isOut(it models.InventoryItem) bool {
	return it.Quantity == 0
}

// Summarize computes the dashboard from the three collections.
func Summarize(items []models.InventoryItem, requests []models.Request, categories []models.Category) Summary {
	names := listing.NamesOf(items)
	s := Summary{
		TotalItems:     len(items),
		CategoryCount:  len(categories),
		RecentActivity: RecentActivity(items, requests, names, RecentActivityLimit),
		PendingPreview: []PendingRequest{},
		Categories:     Overview(items, categories),
	}

	for _, it := range items {
		if isLow(it) {
			s.LowStockCount++
		}
		if isOut(it) {
			s.OutOfStockCount++
		}
	}

	for _, r := range requests {
		if r.Status != models.StatusPending {
			continue
		}
		s.PendingCount++
		if len(s.PendingPreview) < PendingPreviewLimit {
			s.PendingPreview = append(s.PendingPreview, PendingRequest{Request: r, ItemName: names.Display(r.ItemID)})
		}
	}
	return s
}

// RecentActivity merges item updates and requests, newest first. Entries
// with equal timestamps keep items ahead of requests.
func RecentActivity(items []models.InventoryItem, requests []models.Request, names listing.ItemNames, limit int) []Activity {
	feed := make([]Activity, 0, len(items)+len(requests))
	for _, it := range items {
		feed = append(feed, Activity{
			Kind:   ActivityItem,
			ID:     it.ID,
			Title:  it.Name,
			Detail: it.Location,
			Status: string(it.Status()),
			At:     it.LastUpdated,
		})
	}
	for _, r := range requests {
		feed = append(feed, Activity{
			Kind:   ActivityRequest,
			ID:     r.ID,
			Title:  names.Display(r.ItemID),
			Detail: r.Requester,
			Status: string(r.Status),
			At:     r.RequestDate,
		})
	}

	slices.SortStableFunc(feed, func(a, b Activity) int {
		return b.At.Compare(a.At)
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

func Overview(items []models.InventoryItem, categories []models.Category) []CategoryOverview {
	out := make([]CategoryOverview, 0, len(categories))
	for _, c := range categories {
		o := CategoryOverview{ID: c.ID, Name: c.Name, Icon: c.Icon}
		for _, it := range items {
			if it.Category != c.Name {
				continue
			}
			o.ItemCount++
			if isLow(it) {
				o.LowStockCount++
			}
		}
		out = append(out, o)
	}
	return out
}
