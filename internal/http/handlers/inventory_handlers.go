package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
)

// inventoryQuery reads the list controls from the query string.
func inventoryQuery(r *http.Request) (listing.InventoryFilter, listing.Sort, []ValidationError) {
	q := r.URL.Query()
	var errs []ValidationError

	f := listing.InventoryFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: q.Get("category"),
		Location: q.Get("location"),
	}

	var err error
	if f.From, err = listing.ParseDate(queryTime(r, "from"), false); err != nil {
		errs = append(errs, ValidationError{Field: "from", Description: "invalid from date"})
	}
	if f.To, err = listing.ParseDate(queryTime(r, "to"), true); err != nil {
		errs = append(errs, ValidationError{Field: "to", Description: "invalid to date"})
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		errs = append(errs, ValidationError{Field: "from", Description: "from date must be before to date"})
	}
	if f.MinQuantity, err = parseIntPtr(q.Get("minQty")); err != nil {
		errs = append(errs, ValidationError{Field: "minQty", Description: "invalid minQty"})
	}
	if f.Stock, err = listing.ParseStockFilter(q.Get("stock")); err != nil {
		errs = append(errs, ValidationError{Field: "stock", Description: err.Error()})
	}

	s, err := listing.ParseSort(listing.ModeInventory, q.Get("sort"), q.Get("order"))
	if err != nil {
		errs = append(errs, ValidationError{Field: "sort", Description: err.Error()})
	}
	return f, s, errs
}

// GetInventoryHandler godoc
// @Summary List inventory items
// @Description Filters and sorts the inventory. Filters are combined with AND.
// @Tags inventory
// @Produce json
// @Param search query string false "Name or location contains (case-insensitive)"
// @Param category query string false "Category name, or all"
// @Param location query string false "Location, or all"
// @Param from query string false "Updated on or after (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Updated on or before (RFC3339 or YYYY-MM-DD)"
// @Param minQty query int false "Minimum quantity"
// @Param stock query string false "all, low, out or good"
// @Param sort query string false "name, category, quantity, minStock, location, unit or lastUpdated"
// @Param order query string false "asc or desc"
// @Success 200 {object} InventorySearchResult
// @Failure 400 {array} ValidationError
// @Failure 502 {object} ErrorResponse
// @Router /inventory [get]
func GetInventoryHandler(w http.ResponseWriter, r *http.Request) {
	f, s, errs := inventoryQuery(r)
	if len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	page, err := loader.Inventory(r.Context(), f, s)
	if err != nil {
		writeError(w, err, "inventory")
		return
	}

	data := make([]ItemResponse, 0, len(page.Items))
	for _, it := range page.Items {
		data = append(data, itemResponse(it))
	}
	respond(w, http.StatusOK, InventorySearchResult{
		Data:       data,
		Meta:       Meta{TotalCount: page.TotalCount, VisibleCount: page.VisibleCount},
		Categories: page.Categories,
		Locations:  page.Locations,
		Sort:       page.Sort,
	})
}

// GetItemHandler godoc
// @Summary Get an inventory item
// @Tags inventory
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} ItemResponse
// @Failure 400 {string} string "Invalid item ID"
// @Failure 404 {string} string "Item not found"
// @Router /inventory/{id} [get]
func GetItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	it, err := inventoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "item")
		return
	}
	respond(w, http.StatusOK, itemResponse(it))
}

// CreateItemHandler godoc
// @Summary Create an inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param item body ItemRequest true "Item"
// @Success 201 {object} ItemResponse
// @Failure 400 {array} ValidationError
// @Failure 502 {object} ErrorResponse
// @Router /inventory [post]
// @Security BearerAuth
func CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := inventoryRepo.Create(r.Context(), models.InventoryItem{
		Name:     strings.TrimSpace(req.Name),
		Category: req.Category,
		Quantity: int(req.Quantity),
		MinStock: int(req.MinStock),
		Unit:     req.Unit,
		Location: req.Location,
		Tags:     req.Tags,
		Owner:    req.Owner,
	})
	if err != nil {
		writeError(w, err, "item")
		return
	}

	notices.Notify(r.Context(), notice.Success("Item added successfully"))
	mailer.ItemChanged(nil, created)
	respond(w, http.StatusCreated, itemResponse(created))
}

// UpdateItemHandler godoc
// @Summary Update an inventory item
// @Description Only the fields present in the body are changed. lastUpdated is always refreshed.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param item body ItemPatchRequest true "Fields to change"
// @Success 200 {object} ItemResponse
// @Failure 400 {array} ValidationError
// @Failure 404 {string} string "Item not found"
// @Failure 502 {object} ErrorResponse
// @Router /inventory/{id} [put]
// @Security BearerAuth
func UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	var req ItemPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	before, err := inventoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "item")
		return
	}

	updated, err := inventoryRepo.Update(r.Context(), id, repo.InventoryPatch{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity.IntPtr(),
		MinStock: req.MinStock.IntPtr(),
		Unit:     req.Unit,
		Location: req.Location,
		Tags:     req.Tags,
		Owner:    req.Owner,
	})
	if err != nil {
		writeError(w, err, "item")
		return
	}

	notices.Notify(r.Context(), notice.Success("Item updated successfully"))
	mailer.ItemChanged(&before, updated)
	respond(w, http.StatusOK, itemResponse(updated))
}

// AdjustQuantityHandler godoc
// @Summary Adjust the quantity of an item
// @Description Adds delta to the stored quantity. The result cannot go below zero.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity delta"
// @Success 200 {object} ItemResponse
// @Failure 400 {array} ValidationError
// @Failure 404 {string} string "Item not found"
// @Failure 502 {object} ErrorResponse
// @Router /inventory/{id}/adjust [post]
// @Security BearerAuth
func AdjustQuantityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	var req QuantityAdjustmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	before, err := inventoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "item")
		return
	}

	quantity := before.Quantity + req.Delta
	if quantity < 0 {
		msg := fmt.Sprintf("cannot remove %d, only %d in stock", -req.Delta, before.Quantity)
		notices.Notify(r.Context(), notice.FieldError("delta", msg))
		respond(w, http.StatusBadRequest, []ValidationError{{Field: "delta", Description: msg}})
		return
	}

	updated, err := inventoryRepo.Update(r.Context(), id, repo.InventoryPatch{Quantity: &quantity})
	if err != nil {
		writeError(w, err, "item")
		return
	}

	notices.Notify(r.Context(), notice.Success("Quantity updated"))
	mailer.ItemChanged(&before, updated)
	respond(w, http.StatusOK, itemResponse(updated))
}

// DeleteItemHandler godoc
// @Summary Delete an inventory item
// @Tags inventory
// @Param id path int true "Item ID"
// @Param confirm query bool true "Must be true"
// @Success 204 "No Content"
// @Failure 400 {string} string "Invalid item ID"
// @Failure 404 {string} string "Item not found"
// @Failure 428 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /inventory/{id} [delete]
// @Security BearerAuth
func DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok || !confirmed(w, r) {
		return
	}

	if _, err := inventoryRepo.Delete(r.Context(), id); err != nil {
		writeError(w, err, "item")
		return
	}

	notices.Notify(r.Context(), notice.Success("Item deleted successfully"))
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteHandler godoc
// @Summary Delete several inventory items
// @Description Each id is deleted on its own; ids that succeed stay deleted when others fail.
// @Description With select_all, every item matching the list filters in the query string is included.
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body BulkDeleteRequest true "Ids to delete"
// @Param search query string false "List filter used with select_all"
// @Param category query string false "List filter used with select_all"
// @Param location query string false "List filter used with select_all"
// @Param stock query string false "List filter used with select_all"
// @Success 200 {object} BulkDeleteResult
// @Success 207 {object} BulkDeleteResult "Some deletes failed"
// @Failure 400 {string} string "Nothing selected"
// @Failure 428 {object} ErrorResponse
// @Failure 502 {object} BulkDeleteResult "Every delete failed"
// @Router /inventory/bulk-delete [post]
// @Security BearerAuth
func BulkDeleteHandler(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if !req.Confirm {
		respond(w, http.StatusPreconditionRequired, ErrorResponse{Error: "deletion must be confirmed with confirm=true"})
		return
	}

	f, _, errs := inventoryQuery(r)
	if len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	items, err := inventoryRepo.GetAll(r.Context())
	if err != nil {
		writeError(w, err, "inventory")
		return
	}

	sel := listing.NewSelection(req.IDs...)
	if req.SelectAll {
		sel.Select(listing.InventoryIDs(listing.FilterInventory(items, f))...)
	}
	if sel.Len() == 0 {
		http.Error(w, "no items selected", http.StatusBadRequest)
		return
	}

	res := loader.BulkDelete(r.Context(), items, sel.IDs())

	status := http.StatusOK
	switch {
	case res.Partial():
		status = http.StatusMultiStatus
	case len(res.Deleted) == 0:
		status = http.StatusBadGateway
	}
	respond(w, status, res)
}
