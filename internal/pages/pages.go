// Package pages assembles what each screen needs on entry. Independent
// collections are fetched concurrently and the whole load fails if any of
// them does, so a caller retries the page rather than rendering half of it.
package pages

import (
	"context"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/dashboard"
	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
	"github.com/rogerio-castellano/school-inventory/internal/workflow"
	"golang.org/x/sync/errgroup"
)

type Loader struct {
	inventory  repo.InventoryRepository
	requests   repo.RequestRepository
	categories repo.CategoryRepository
	notifier   notice.Notifier
	now        func() time.Time

	// BulkLimit caps the number of deletes in flight during a bulk delete.
	BulkLimit int
}

func NewLoader(inv repo.InventoryRepository, req repo.RequestRepository, cat repo.CategoryRepository, n notice.Notifier) *Loader {
	if n == nil {
		n = notice.Discard
	}
	return &Loader{
		inventory:  inv,
		requests:   req,
		categories: cat,
		notifier:   n,
		now:        time.Now,
		BulkLimit:  4,
	}
}

type InventoryPage struct {
	Items        []models.InventoryItem `json:"data"`
	TotalCount   int                    `json:"total_count"`
	VisibleCount int                    `json:"visible_count"`
	Categories   []models.Category      `json:"categories"`
	Locations    []string               `json:"locations"`
	Sort         listing.Sort           `json:"sort"`
}

func (l *Loader) Inventory(ctx context.Context, f listing.InventoryFilter, s listing.Sort) (InventoryPage, error) {
	var items []models.InventoryItem
	var cats []models.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = l.inventory.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = l.categories.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return InventoryPage{}, err
	}

	visible := listing.VisibleInventory(items, f, s)
	return InventoryPage{
		Items:        visible,
		TotalCount:   len(items),
		VisibleCount: len(visible),
		Categories:   cats,
		Locations:    listing.AvailableLocations(items),
		Sort:         s,
	}, nil
}

// RequestRow is a request as listed, with its resolved item and the
// actions its status allows.
type RequestRow struct {
	models.Request
	ItemName string            `json:"itemName"`
	Unit     string            `json:"unit,omitempty"`
	Badge    workflow.Badge    `json:"badge"`
	Actions  []workflow.Action `json:"actions"`
}

type RequestsPage struct {
	Requests     []RequestRow         `json:"data"`
	TotalCount   int                  `json:"total_count"`
	VisibleCount int                  `json:"visible_count"`
	Counts       listing.StatusCounts `json:"counts"`
	Sort         listing.Sort         `json:"sort"`
}

func (l *Loader) Requests(ctx context.Context, f listing.RequestFilter, s listing.Sort) (RequestsPage, error) {
	var reqs []models.Request
	var items []models.InventoryItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reqs, err = l.requests.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		items, err = l.inventory.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return RequestsPage{}, err
	}

	names := listing.NamesOf(items)
	units := make(map[int]string, len(items))
	for _, it := range items {
		units[it.ID] = it.Unit
	}

	visible := listing.VisibleRequests(reqs, names, f, s)
	rows := make([]RequestRow, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, RequestRow{
			Request:  r,
			ItemName: names.Display(r.ItemID),
			Unit:     units[r.ItemID],
			Badge:    workflow.BadgeFor(string(r.Status)),
			Actions:  workflow.Actions(r.Status),
		})
	}
	return RequestsPage{
		Requests:     rows,
		TotalCount:   len(reqs),
		VisibleCount: len(rows),
		Counts:       listing.CountStatuses(reqs),
		Sort:         s,
	}, nil
}

func (l *Loader) all(ctx context.Context) ([]models.InventoryItem, []models.Request, []models.Category, error) {
	var items []models.InventoryItem
	var reqs []models.Request
	var cats []models.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = l.inventory.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		reqs, err = l.requests.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = l.categories.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return items, reqs, cats, nil
}

// Categories lists the categories with item and low stock counts taken
// from the current inventory.
func (l *Loader) Categories(ctx context.Context) ([]dashboard.CategoryOverview, error) {
	var items []models.InventoryItem
	var cats []models.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = l.inventory.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = l.categories.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard.Overview(items, cats), nil
}

func (l *Loader) Dashboard(ctx context.Context) (dashboard.Summary, error) {
	items, reqs, cats, err := l.all(ctx)
	if err != nil {
		return dashboard.Summary{}, err
	}
	return dashboard.Summarize(items, reqs, cats), nil
}

func (l *Loader) Reports(ctx context.Context) (dashboard.Report, error) {
	items, reqs, cats, err := l.all(ctx)
	if err != nil {
		return dashboard.Report{}, err
	}
	return dashboard.BuildReport(items, reqs, cats, l.now()), nil
}
