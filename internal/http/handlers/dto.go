package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rogerio-castellano/school-inventory/internal/dashboard"
	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/pages"
	"github.com/rogerio-castellano/school-inventory/internal/records"
)

// FlexInt accepts a JSON number or a numeric string, the way form fields arrive.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	n, err := records.ToInt(v)
	if err != nil {
		return fmt.Errorf("expected an integer: %w", err)
	}
	*f = FlexInt(n)
	return nil
}

func (f *FlexInt) IntPtr() *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

type ItemRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Category string  `json:"category" validate:"required"`
	Quantity FlexInt `json:"quantity" validate:"gte=0"`
	MinStock FlexInt `json:"minStock" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"required"`
	Location string  `json:"location" validate:"required"`
	Tags     string  `json:"tags"`
	Owner    string  `json:"owner"`
}

// ItemPatchRequest is a partial update; absent fields are left as stored.
type ItemPatchRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Category *string  `json:"category" validate:"omitempty,min=1"`
	Quantity *FlexInt `json:"quantity" validate:"omitempty,gte=0"`
	MinStock *FlexInt `json:"minStock" validate:"omitempty,gte=0"`
	Unit     *string  `json:"unit" validate:"omitempty,min=1"`
	Location *string  `json:"location" validate:"omitempty,min=1"`
	Tags     *string  `json:"tags"`
	Owner    *string  `json:"owner"`
}

type QuantityAdjustmentRequest struct {
	Delta int `json:"delta" validate:"ne=0"` // can be positive or negative
}

type ItemResponse struct {
	models.InventoryItem
	Status      models.StockStatus `json:"status"`
	StatusLabel string             `json:"statusLabel"`
}

func itemResponse(it models.InventoryItem) ItemResponse {
	return ItemResponse{InventoryItem: it, Status: it.Status(), StatusLabel: it.Status().Label()}
}

type Meta struct {
	TotalCount   int `json:"total_count"`
	VisibleCount int `json:"visible_count"`
}

type InventorySearchResult struct {
	Data       []ItemResponse    `json:"data"`
	Meta       Meta              `json:"meta"`
	Categories []models.Category `json:"categories"`
	Locations  []string          `json:"locations"`
	Sort       listing.Sort      `json:"sort"`
}

// BulkDeleteRequest names the ids to delete. With SelectAll, every item
// matching the list filter in the query string is added to IDs.
type BulkDeleteRequest struct {
	IDs       []int `json:"ids"`
	SelectAll bool  `json:"select_all"`
	Confirm   bool  `json:"confirm"`
}

type BulkDeleteResult = pages.BulkResult

type RequestCreateRequest struct {
	ItemID     FlexInt `json:"itemId" validate:"gt=0"`
	Quantity   FlexInt `json:"quantity" validate:"gt=0"`
	Requester  string  `json:"requester" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Notes      string  `json:"notes" validate:"max=1000"`
}

type RequestsSearchResult struct {
	Data   []pages.RequestRow   `json:"data"`
	Meta   Meta                 `json:"meta"`
	Counts listing.StatusCounts `json:"counts"`
	Sort   listing.Sort         `json:"sort"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Icon string `json:"icon"`
}

type CategoryPatchRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Icon *string `json:"icon"`
}

type CategoriesResult struct {
	Data []dashboard.CategoryOverview `json:"data"`
}

type UserLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type ImportItemsResult struct {
	ImportedItemsCount int               `json:"imported"`
	UpdatedItemsCount  int               `json:"updated"`
	Errors             []ValidationError `json:"errors"`
}

// ErrorResponse is the body of a failed call that has no field errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry,omitempty"`
}
