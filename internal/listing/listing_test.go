package listing

import (
	"slices"
	"testing"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

func sampleItems() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: 1, Name: "Pencils", Category: "Writing", Quantity: 5, MinStock: 10, Location: "Room 101", Unit: "box", LastUpdated: day(10)},
		{ID: 2, Name: "Erasers", Category: "Writing", Quantity: 0, MinStock: 5, Location: "Room 102", Unit: "pack", LastUpdated: day(12)},
		{ID: 3, Name: "Paper", Category: "Paper", Quantity: 50, MinStock: 10, Location: "Storage", Unit: "ream", LastUpdated: day(15)},
		{ID: 4, Name: "pens", Category: "Writing", Quantity: 50, MinStock: 10, Location: "Room 101", Unit: "box", LastUpdated: day(20)},
	}
}

func names(items []models.InventoryItem) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestInventoryFilter(t *testing.T) {
	minQty := 6
	from, _ := ParseDate("2024-01-12", false)
	to, _ := ParseDate("2024-01-15", true)

	tests := []struct {
		name   string
		filter InventoryFilter
		want   []string
	}{
		{"no filter", InventoryFilter{}, []string{"Pencils", "Erasers", "Paper", "pens"}},
		{"search is case insensitive", InventoryFilter{Search: "PEN"}, []string{"Pencils", "pens"}},
		{"search matches location", InventoryFilter{Search: "storage"}, []string{"Paper"}},
		{"category all", InventoryFilter{Category: All}, []string{"Pencils", "Erasers", "Paper", "pens"}},
		{"category", InventoryFilter{Category: "Paper"}, []string{"Paper"}},
		{"location", InventoryFilter{Location: "Room 101"}, []string{"Pencils", "pens"}},
		{"date range is inclusive", InventoryFilter{From: from, To: to}, []string{"Erasers", "Paper"}},
		{"min quantity", InventoryFilter{MinQuantity: &minQty}, []string{"Paper", "pens"}},
		{"stock low includes out", InventoryFilter{Stock: StockLow}, []string{"Pencils", "Erasers"}},
		{"stock out", InventoryFilter{Stock: StockOut}, []string{"Erasers"}},
		{"stock good", InventoryFilter{Stock: StockGood}, []string{"Paper", "pens"}},
		{"predicates are anded", InventoryFilter{Category: "Writing", Location: "Room 101", MinQuantity: &minQty}, []string{"pens"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterInventory(sampleItems(), tt.filter))
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFilterInventory_IdempotentAndPure(t *testing.T) {
	items := sampleItems()
	f := InventoryFilter{Search: "p", Stock: StockGood}

	once := FilterInventory(items, f)
	twice := FilterInventory(once, f)
	if !slices.Equal(names(once), names(twice)) {
		t.Errorf("filter is not idempotent: %v vs %v", names(once), names(twice))
	}
	if !slices.Equal(names(items), names(sampleItems())) {
		t.Error("source slice was mutated")
	}
}

func TestSortInventory(t *testing.T) {
	items := sampleItems()

	byName := SortInventory(items, Sort{Key: "name", Direction: Asc})
	if want := []string{"Erasers", "Paper", "Pencils", "pens"}; !slices.Equal(names(byName), want) {
		t.Errorf("expected %v, got %v", want, names(byName))
	}

	desc := SortInventory(items, Sort{Key: "name", Direction: Desc})
	reversed := slices.Clone(names(byName))
	slices.Reverse(reversed)
	if !slices.Equal(names(desc), reversed) {
		t.Errorf("descending should reverse distinct keys: %v", names(desc))
	}

	// Paper and pens tie on quantity and keep their relative order both ways.
	byQty := SortInventory(items, Sort{Key: "quantity", Direction: Asc})
	if want := []string{"Erasers", "Pencils", "Paper", "pens"}; !slices.Equal(names(byQty), want) {
		t.Errorf("expected %v, got %v", want, names(byQty))
	}
	byQtyDesc := SortInventory(items, Sort{Key: "quantity", Direction: Desc})
	if want := []string{"Paper", "pens", "Pencils", "Erasers"}; !slices.Equal(names(byQtyDesc), want) {
		t.Errorf("expected %v, got %v", want, names(byQtyDesc))
	}

	if !slices.Equal(names(items), names(sampleItems())) {
		t.Error("source slice was mutated")
	}
}

func TestParseSortAndToggle(t *testing.T) {
	s, err := ParseSort(ModeInventory, "", "")
	if err != nil || s != (Sort{Key: "name", Direction: Asc}) {
		t.Errorf("unexpected default inventory sort %v (%v)", s, err)
	}
	s, err = ParseSort(ModeRequests, "", "")
	if err != nil || s != (Sort{Key: "requestDate", Direction: Desc}) {
		t.Errorf("unexpected default request sort %v (%v)", s, err)
	}
	if _, err := ParseSort(ModeInventory, "requester", ""); err == nil {
		t.Error("expected request key to be refused for inventory")
	}
	if _, err := ParseSort(ModeInventory, "name", "sideways"); err == nil {
		t.Error("expected invalid order to be refused")
	}

	s = Sort{Key: "name", Direction: Asc}.Toggle("name")
	if s.Direction != Desc {
		t.Errorf("same key should flip direction, got %v", s)
	}
	s = s.Toggle("quantity")
	if s != (Sort{Key: "quantity", Direction: Asc}) {
		t.Errorf("new key should reset to ascending, got %v", s)
	}
}

func TestRequests(t *testing.T) {
	itemNames := NamesOf(sampleItems())
	reqs := []models.Request{
		{ID: 1, ItemID: 1, Quantity: 3, Requester: "Ms. Rivera", Department: "Science", Status: models.StatusPending, RequestDate: day(3)},
		{ID: 2, ItemID: 3, Quantity: 10, Requester: "Mr. Chen", Department: "Math", Status: models.StatusApproved, RequestDate: day(5)},
		{ID: 3, ItemID: 99, Quantity: 1, Requester: "Ms. Okafor", Department: "Art", Status: models.StatusPending, RequestDate: day(1)},
	}

	ids := func(rs []models.Request) []int {
		out := []int{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	if got := ids(FilterRequests(reqs, itemNames, RequestFilter{Search: "pencil"})); !slices.Equal(got, []int{1}) {
		t.Errorf("search by item name: got %v", got)
	}
	if got := ids(FilterRequests(reqs, itemNames, RequestFilter{Search: "math"})); !slices.Equal(got, []int{2}) {
		t.Errorf("search by department: got %v", got)
	}
	if got := ids(FilterRequests(reqs, itemNames, RequestFilter{Search: "unknown"})); len(got) != 0 {
		t.Errorf("dangling item should not match its display name, got %v", got)
	}
	if got := ids(FilterRequests(reqs, itemNames, RequestFilter{Status: "pending"})); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("status filter: got %v", got)
	}

	if got := ids(SortRequests(reqs, itemNames, DefaultSort(ModeRequests))); !slices.Equal(got, []int{2, 1, 3}) {
		t.Errorf("newest first: got %v", got)
	}
	if got := ids(SortRequests(reqs, itemNames, Sort{Key: "item", Direction: Asc})); !slices.Equal(got, []int{2, 1, 3}) {
		t.Errorf("by item name: got %v", got)
	}
	if itemNames.Display(99) != models.UnknownItemName {
		t.Errorf("expected %q for dangling id", models.UnknownItemName)
	}

	c := CountStatuses(reqs)
	if c != (StatusCounts{All: 3, Pending: 2, Approved: 1}) {
		t.Errorf("unexpected counts %+v", c)
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	s.Toggle(3)
	s.Toggle(1)
	s.Toggle(3)
	if !slices.Equal(s.IDs(), []int{1}) {
		t.Errorf("expected [1], got %v", s.IDs())
	}

	// select all under a category filter only takes the visible rows
	visible := InventoryIDs(FilterInventory(sampleItems(), InventoryFilter{Category: "Paper"}))
	s.ToggleAll(visible)
	if !slices.Equal(s.IDs(), []int{3}) {
		t.Errorf("expected only visible ids, got %v", s.IDs())
	}

	s.ToggleAll(visible)
	if s.Len() != 0 {
		t.Errorf("second toggle should clear, got %v", s.IDs())
	}

	s.ToggleAll(nil)
	if s.Len() != 0 {
		t.Errorf("toggling an empty list should leave nothing selected, got %v", s.IDs())
	}

	s.Toggle(5)
	s.Select(3, 5, 4)
	if !slices.Equal(s.IDs(), []int{5, 3, 4}) {
		t.Errorf("Select should add without dropping or duplicating, got %v", s.IDs())
	}
}

func TestAvailableLocations(t *testing.T) {
	got := AvailableLocations(sampleItems())
	if want := []string{"Room 101", "Room 102", "Storage"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
