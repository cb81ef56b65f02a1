package main

import (
	"context"
	"fmt"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rs/zerolog/log"
)

var sampleCategories = []models.Category{
	{Name: "Writing Supplies", Icon: "PenTool"},
	{Name: "Paper Products", Icon: "FileText"},
	{Name: "Art Supplies", Icon: "Palette"},
	{Name: "Cleaning", Icon: "Sparkles"},
	{Name: "Technology", Icon: "Monitor"},
}

var sampleItems = []models.InventoryItem{
	{Name: "No. 2 Pencils", Category: "Writing Supplies", Quantity: 240, MinStock: 100, Unit: "pieces", Location: "Supply Room A"},
	{Name: "Blue Ballpoint Pens", Category: "Writing Supplies", Quantity: 45, MinStock: 50, Unit: "pieces", Location: "Supply Room A"},
	{Name: "Dry Erase Markers", Category: "Writing Supplies", Quantity: 0, MinStock: 24, Unit: "pieces", Location: "Main Office"},
	{Name: "Copy Paper", Category: "Paper Products", Quantity: 30, MinStock: 20, Unit: "reams", Location: "Copy Room"},
	{Name: "Construction Paper", Category: "Paper Products", Quantity: 8, MinStock: 10, Unit: "packs", Location: "Art Room"},
	{Name: "Washable Paint Set", Category: "Art Supplies", Quantity: 12, MinStock: 6, Unit: "sets", Location: "Art Room"},
	{Name: "Glue Sticks", Category: "Art Supplies", Quantity: 60, MinStock: 40, Unit: "pieces", Location: "Supply Room B"},
	{Name: "Disinfecting Wipes", Category: "Cleaning", Quantity: 5, MinStock: 15, Unit: "canisters", Location: "Custodial Closet"},
	{Name: "HDMI Cables", Category: "Technology", Quantity: 14, MinStock: 5, Unit: "pieces", Location: "IT Office"},
}

// sampleRequests refer to sampleItems by position.
var sampleRequests = []struct {
	item int
	req  models.Request
}{
	{1, models.Request{Quantity: 20, Requester: "Ms. Johnson", Department: "English", Notes: "Essay week"}},
	{3, models.Request{Quantity: 5, Requester: "Mr. Alvarez", Department: "Math"}},
	{7, models.Request{Quantity: 10, Requester: "Nurse Patel", Department: "Health Office", Notes: "Flu season"}},
}

func seedSampleData(ctx context.Context, a *app) error {
	for _, c := range sampleCategories {
		if _, err := a.categories.Create(ctx, c); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	ids := make([]int, len(sampleItems))
	for i, it := range sampleItems {
		created, err := a.inventory.Create(ctx, it)
		if err != nil {
			return fmt.Errorf("seed item %q: %w", it.Name, err)
		}
		ids[i] = created.ID
	}

	for _, s := range sampleRequests {
		r := s.req
		r.ItemID = ids[s.item]
		if _, err := a.requests.Create(ctx, r); err != nil {
			return fmt.Errorf("seed request for %q: %w", sampleItems[s.item].Name, err)
		}
	}

	log.Info().
		Int("categories", len(sampleCategories)).
		Int("items", len(sampleItems)).
		Int("requests", len(sampleRequests)).
		Msg("sample data loaded")
	return nil
}
