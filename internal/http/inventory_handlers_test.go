package http_test

import (
	"net/http"
	"slices"
	"strings"
	"testing"

	api "github.com/rogerio-castellano/school-inventory/internal/http"
	"github.com/rogerio-castellano/school-inventory/internal/http/handlers"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/pages"
	"github.com/rogerio-castellano/school-inventory/internal/records"
)

func TestGetInventoryHandler_Filters(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default sort is name ascending", "", []string{"Copy Paper", "Erasers", "Pencils"}},
		{"low stock includes out of stock", "?stock=low", []string{"Erasers", "Pencils"}},
		{"out of stock", "?stock=out", []string{"Erasers"}},
		{"search matches location", "?search=storage", []string{"Copy Paper"}},
		{"category and min quantity", "?category=Writing&minQty=1", []string{"Pencils"}},
		{"sort by quantity descending", "?sort=quantity&order=desc", []string{"Copy Paper", "Pencils", "Erasers"}},
		{"all is no filter", "?category=all&location=all&stock=all", []string{"Copy Paper", "Erasers", "Pencils"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/inventory"+tt.query, nil, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
			}

			res := decode[handlers.InventorySearchResult](t, w)
			var got []string
			for _, it := range res.Data {
				got = append(got, it.Name)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if res.Meta.TotalCount != 3 || res.Meta.VisibleCount != len(tt.want) {
				t.Errorf("unexpected meta %+v", res.Meta)
			}
		})
	}
}

func TestGetInventoryHandler_StatusAndLookups(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	res := decode[handlers.InventorySearchResult](t, do(r, http.MethodGet, "/inventory", nil, ""))

	status := map[string]models.StockStatus{}
	for _, it := range res.Data {
		status[it.Name] = it.Status
	}
	if status["Pencils"] != models.StockLow || status["Erasers"] != models.StockOut || status["Copy Paper"] != models.StockGood {
		t.Errorf("unexpected statuses %v", status)
	}
	if !slices.Equal(res.Locations, []string{"Room 101", "Room 102", "Storage"}) {
		t.Errorf("unexpected locations %v", res.Locations)
	}
	if len(res.Categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(res.Categories))
	}
}

func TestGetInventoryHandler_InvalidQuery(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	w := do(r, http.MethodGet, "/inventory?stock=plenty&sort=price&from=yesterday&minQty=x", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", w.Code)
	}

	errs := decode[[]handlers.ValidationError](t, w)
	var fields []string
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	for _, f := range []string{"from", "minQty", "stock", "sort"} {
		if !slices.Contains(fields, f) {
			t.Errorf("expected a validation error for %s, got %v", f, fields)
		}
	}
}

func TestGetInventoryHandler_BackendFailure(t *testing.T) {
	seed(t)
	r := api.NewRouter()
	store.FailOn(records.TableInventory, records.OpFetch, 0, records.ErrBackend)

	w := do(r, http.MethodGet, "/inventory", nil, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 Bad Gateway, got %d", w.Code)
	}
	res := decode[handlers.ErrorResponse](t, w)
	if !res.Retry {
		t.Error("expected a retry hint")
	}
	if got := messages(notice.LevelError); !slices.Equal(got, []string{"Failed to fetch inventory"}) {
		t.Errorf("unexpected failure notices %v", got)
	}
}

func TestGetItemHandler(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	tests := []struct {
		path string
		code int
	}{
		{"/inventory/1", http.StatusOK},
		{"/inventory/99", http.StatusNotFound},
		{"/inventory/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := do(r, http.MethodGet, tt.path, nil, ""); w.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestCreateItemHandler_Valid(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	body := map[string]any{
		"name": "Glue Sticks", "category": "Art", "quantity": "12", "minStock": 4,
		"unit": "pack", "location": "Cabinet A",
	}
	w := do(r, http.MethodPost, "/inventory", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	res := decode[handlers.ItemResponse](t, w)
	if res.ID != 4 || res.Name != "Glue Sticks" || res.Quantity != 12 {
		t.Errorf("unexpected item %+v", res)
	}
	if res.LastUpdated.IsZero() {
		t.Error("expected lastUpdated to be set")
	}
	if got := messages(notice.LevelSuccess); !slices.Equal(got, []string{"Item added successfully"}) {
		t.Errorf("unexpected success notices %v", got)
	}
}

func TestCreateItemHandler_Invalid(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing name", map[string]any{"category": "Art", "quantity": 1, "minStock": 0, "unit": "pack", "location": "A"}, "name"},
		{"negative quantity", map[string]any{"name": "Glue", "category": "Art", "quantity": -1, "minStock": 0, "unit": "pack", "location": "A"}, "quantity"},
		{"negative min stock", map[string]any{"name": "Glue", "category": "Art", "quantity": 1, "minStock": -3, "unit": "pack", "location": "A"}, "minStock"},
		{"missing location", map[string]any{"name": "Glue", "category": "Art", "quantity": 1, "minStock": 0, "unit": "pack"}, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/inventory", tt.body, token)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 Bad Request, got %d", w.Code)
			}
			errs := decode[[]handlers.ValidationError](t, w)
			if len(errs) == 0 || errs[0].Field != tt.field {
				t.Errorf("expected error on %s, got %+v", tt.field, errs)
			}
		})
	}

	w := do(r, http.MethodPost, "/inventory", map[string]any{"name": "Glue", "quantity": "lots"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non numeric quantity, got %d", w.Code)
	}
}

func TestCreateItemHandler_RequiresToken(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	w := do(r, http.MethodPost, "/inventory", map[string]any{"name": "Glue"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", w.Code)
	}
	w = do(r, http.MethodPost, "/inventory", map[string]any{"name": "Glue"}, "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized for a bad token, got %d", w.Code)
	}
}

func TestUpdateItemHandler_Partial(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	w := do(r, http.MethodPut, "/inventory/3", map[string]any{"quantity": 7, "location": "Room 5"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	res := decode[handlers.ItemResponse](t, w)
	if res.Name != "Copy Paper" || res.Quantity != 7 || res.Location != "Room 5" || res.MinStock != 10 {
		t.Errorf("unexpected item %+v", res)
	}
	if res.Status != models.StockLow {
		t.Errorf("expected low stock after update, got %s", res.Status)
	}

	if w := do(r, http.MethodPut, "/inventory/99", map[string]any{"quantity": 1}, token); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing item, got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/inventory/3", map[string]any{"name": ""}, token); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an empty name, got %d", w.Code)
	}
}

func TestAdjustQuantityHandler(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	w := do(r, http.MethodPost, "/inventory/1/adjust", handlers.QuantityAdjustmentRequest{Delta: -10}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when removing more than in stock, got %d", w.Code)
	}
	if got := noticeLog.All(); len(got) != 1 || got[0].Field != "delta" {
		t.Errorf("expected one field notice, got %+v", got)
	}

	w = do(r, http.MethodPost, "/inventory/1/adjust", handlers.QuantityAdjustmentRequest{Delta: 6}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	res := decode[handlers.ItemResponse](t, w)
	if res.Quantity != 11 || res.Status != models.StockGood {
		t.Errorf("unexpected item %+v", res)
	}

	if w := do(r, http.MethodPost, "/inventory/1/adjust", handlers.QuantityAdjustmentRequest{}, token); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a zero delta, got %d", w.Code)
	}
}

func TestDeleteItemHandler(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	if w := do(r, http.MethodDelete, "/inventory/1", nil, token); w.Code != http.StatusPreconditionRequired {
		t.Fatalf("expected 428 without confirmation, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/inventory/1?confirm=true", nil, staffToken); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/inventory/1?confirm=true", nil, token); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 No Content, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/inventory/1", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected item to be gone, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/inventory/1?confirm=true", nil, token); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a second delete, got %d", w.Code)
	}
}

func TestBulkDeleteHandler_PartialFailure(t *testing.T) {
	seed(t)
	r := api.NewRouter()
	store.FailOn(records.TableInventory, records.OpDelete, 2, records.ErrBackend)

	w := do(r, http.MethodPost, "/inventory/bulk-delete", handlers.BulkDeleteRequest{IDs: []int{1, 2, 3}, Confirm: true}, token)
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207 Multi-Status, got %d: %s", w.Code, w.Body.String())
	}

	res := decode[pages.BulkResult](t, w)
	if !slices.Equal(res.Deleted, []int{1, 3}) {
		t.Errorf("expected 1 and 3 deleted, got %v", res.Deleted)
	}
	if len(res.Failed) != 1 || res.Failed[0].ID != 2 {
		t.Errorf("expected only id 2 to fail, got %+v", res.Failed)
	}

	list := decode[handlers.InventorySearchResult](t, do(r, http.MethodGet, "/inventory", nil, ""))
	if len(list.Data) != 1 || list.Data[0].ID != 2 {
		t.Errorf("expected only item 2 to remain, got %+v", list.Data)
	}
	if got := messages(notice.LevelError); !slices.Equal(got, []string{"Failed to delete item 2"}) {
		t.Errorf("expected exactly one failure notice, got %v", got)
	}
}

func TestBulkDeleteHandler_SelectAllUsesFilter(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	w := do(r, http.MethodPost, "/inventory/bulk-delete?stock=low", handlers.BulkDeleteRequest{SelectAll: true, Confirm: true}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	res := decode[pages.BulkResult](t, w)
	if !slices.Equal(res.Deleted, []int{1, 2}) {
		t.Errorf("expected the low stock items to be deleted, got %v", res.Deleted)
	}
	if got := messages(notice.LevelSuccess); !slices.Equal(got, []string{"2 items deleted successfully"}) {
		t.Errorf("unexpected success notices %v", got)
	}
}

func TestBulkDeleteHandler_SelectAllKeepsExplicitIDs(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	body := handlers.BulkDeleteRequest{IDs: []int{3}, SelectAll: true, Confirm: true}
	w := do(r, http.MethodPost, "/inventory/bulk-delete?category=Writing", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if res := decode[pages.BulkResult](t, w); !slices.Equal(res.Deleted, []int{1, 2, 3}) {
		t.Errorf("expected the filtered items and item 3 to be deleted, got %v", res.Deleted)
	}
}

func TestBulkDeleteHandler_Refusals(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	tests := []struct {
		name string
		body handlers.BulkDeleteRequest
		tok  string
		code int
	}{
		{"not confirmed", handlers.BulkDeleteRequest{IDs: []int{1}}, token, http.StatusPreconditionRequired},
		{"nothing selected", handlers.BulkDeleteRequest{Confirm: true}, token, http.StatusBadRequest},
		{"staff", handlers.BulkDeleteRequest{IDs: []int{1}, Confirm: true}, staffToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, http.MethodPost, "/inventory/bulk-delete", tt.body, tt.tok); w.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, w.Code)
			}
		})
	}

	if n := len(decode[handlers.InventorySearchResult](t, do(r, http.MethodGet, "/inventory", nil, "")).Data); n != 3 {
		t.Errorf("expected nothing deleted, %d items left", n)
	}
}

func TestImportItemsHandler(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	csv := strings.Join([]string{
		"name,category,quantity,minStock,unit,location",
		"Pencils,Writing,40,10,box,Room 101",
		"Glue Sticks,Art,3,5,pack,Cabinet A",
		"Scissors,,2,1,pair,Room 3",
	}, "\n")

	for _, tt := range []struct {
		mode             string
		imported, update int
		errors           int
	}{
		{"skip", 1, 0, 2},
		{"update", 0, 2, 1},
	} {
		t.Run(tt.mode, func(t *testing.T) {
			body, contentType := multipartCSV(t, csv)
			req := newRequest(http.MethodPost, "/inventory/import?mode="+tt.mode, body, token)
			req.Header.Set("Content-Type", contentType)
			w := serve(r, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
			}

			res := decode[handlers.ImportItemsResult](t, w)
			if res.ImportedItemsCount != tt.imported || res.UpdatedItemsCount != tt.update || len(res.Errors) != tt.errors {
				t.Errorf("unexpected result %+v", res)
			}
		})
	}

	it := decode[handlers.ItemResponse](t, do(r, http.MethodGet, "/inventory/1", nil, ""))
	if it.Quantity != 40 {
		t.Errorf("expected Pencils to be updated to 40, got %d", it.Quantity)
	}
}

func TestImportItemsHandler_BadFile(t *testing.T) {
	seed(t)
	r := api.NewRouter()

	body, contentType := multipartCSV(t, "name,quantity\nPencils,3\n")
	req := newRequest(http.MethodPost, "/inventory/import", body, token)
	req.Header.Set("Content-Type", contentType)
	if w := serve(r, req); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing columns, got %d", w.Code)
	}
}
