package dashboard

import (
	"testing"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

func at(d int) time.Time {
	return time.Date(2024, 2, d, 8, 0, 0, 0, time.UTC)
}

func fixtures() ([]models.InventoryItem, []models.Request, []models.Category) {
	items := []models.InventoryItem{
		{ID: 1, Name: "Pencils", Category: "Writing", Quantity: 5, MinStock: 10, LastUpdated: at(1)},
		{ID: 2, Name: "Erasers", Category: "Writing", Quantity: 0, MinStock: 5, LastUpdated: at(3)},
		{ID: 3, Name: "Construction Paper Assorted", Category: "Paper", Quantity: 60, MinStock: 10, LastUpdated: at(5)},
	}
	requests := []models.Request{
		{ID: 1, ItemID: 1, Requester: "Ms. Rivera", Status: models.StatusPending, RequestDate: at(2)},
		{ID: 2, ItemID: 3, Requester: "Mr. Chen", Status: models.StatusApproved, RequestDate: at(4)},
		{ID: 3, ItemID: 77, Requester: "Ms. Okafor", Status: models.StatusPending, RequestDate: at(6)},
		{ID: 4, ItemID: 2, Requester: "Mr. Diaz", Status: models.StatusPending, RequestDate: at(7)},
		{ID: 5, ItemID: 2, Requester: "Ms. Park", Status: models.StatusPending, RequestDate: at(8)},
		{ID: 6, ItemID: 1, Requester: "Mr. Ito", Status: models.StatusPending, RequestDate: at(9)},
	}
	categories := []models.Category{
		{ID: 1, Name: "Writing", ItemCount: 99},
		{ID: 2, Name: "Paper"},
		{ID: 3, Name: "Art"},
	}
	return items, requests, categories
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixtures())

	if s.TotalItems != 3 || s.CategoryCount != 3 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.LowStockCount != 2 {
		t.Errorf("expected low stock to include out of stock items, got %d", s.LowStockCount)
	}
	if s.OutOfStockCount != 1 {
		t.Errorf("expected 1 out of stock, got %d", s.OutOfStockCount)
	}
	if s.PendingCount != 5 {
		t.Errorf("expected 5 pending, got %d", s.PendingCount)
	}

	if len(s.PendingPreview) != PendingPreviewLimit {
		t.Fatalf("expected %d pending previews, got %d", PendingPreviewLimit, len(s.PendingPreview))
	}
	if s.PendingPreview[0].ItemName != "Pencils" || s.PendingPreview[1].ItemName != models.UnknownItemName {
		t.Errorf("unexpected preview names %+v", s.PendingPreview)
	}

	if len(s.RecentActivity) != RecentActivityLimit {
		t.Fatalf("expected %d activities, got %d", RecentActivityLimit, len(s.RecentActivity))
	}
	wantIDs := []int{6, 5, 4, 3, 3}
	wantKinds := []ActivityKind{ActivityRequest, ActivityRequest, ActivityRequest, ActivityRequest, ActivityItem}
	for i, a := range s.RecentActivity {
		if a.ID != wantIDs[i] || a.Kind != wantKinds[i] {
			t.Errorf("activity %d: expected %s %d, got %s %d", i, wantKinds[i], wantIDs[i], a.Kind, a.ID)
		}
	}

	writing := s.Categories[0]
	if writing.ItemCount != 2 || writing.LowStockCount != 2 {
		t.Errorf("expected live counts for Writing, got %+v", writing)
	}
	if s.Categories[2].ItemCount != 0 {
		t.Errorf("expected empty Art category, got %+v", s.Categories[2])
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil)
	if s.TotalItems != 0 || len(s.RecentActivity) != 0 || s.PendingPreview == nil {
		t.Errorf("unexpected empty summary %+v", s)
	}
}

func TestBuildReport(t *testing.T) {
	items, requests, categories := fixtures()
	r := BuildReport(items, requests, categories, at(10))

	if r.EstimatedValue != (5+0+60)*EstimatedUnitValue {
		t.Errorf("unexpected estimated value %d", r.EstimatedValue)
	}
	if r.RequestStatus.Pending != 5 || r.RequestStatus.Approved != 1 {
		t.Errorf("unexpected status counts %+v", r.RequestStatus)
	}
	if len(r.LowStockItems) != 2 {
		t.Errorf("expected 2 low stock items, got %d", len(r.LowStockItems))
	}
	if got := r.StockLevels[2]; got.Label != "Construction Pa..." || got.Band != BandHealthy {
		t.Errorf("unexpected stock level %+v", got)
	}
	if r.CategoryDistribution[1] != (CategorySlice{Name: "Paper", Count: 1}) {
		t.Errorf("unexpected distribution %+v", r.CategoryDistribution)
	}
	if r.MonthlyRequests[1].Month != "Feb" || r.MonthlyRequests[1].Count != 6 {
		t.Errorf("unexpected monthly counts %+v", r.MonthlyRequests)
	}
}

func TestChartLabel(t *testing.T) {
	tests := map[string]string{
		"Glue":              "Glue",
		"Exactly15Chars!":   "Exactly15Chars!",
		"Sixteen chars!!!":  "Sixteen chars!!...",
		"Crayons (24 pack)": "Crayons (24 pac...",
	}
	for in, want := range tests {
		if got := ChartLabel(in); got != want {
			t.Errorf("ChartLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBandOf(t *testing.T) {
	for q, want := range map[int]Band{0: BandCritical, 10: BandCritical, 11: BandModerate, 50: BandModerate, 51: BandHealthy} {
		if got := BandOf(q); got != want {
			t.Errorf("BandOf(%d) = %s, want %s", q, got, want)
		}
	}
}
