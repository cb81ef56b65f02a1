package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
)

// GetCategoriesHandler godoc
// @Summary List categories
// @Description itemCount and lowStockCount are computed from the current inventory.
// @Tags categories
// @Produce json
// @Success 200 {object} CategoriesResult
// @Failure 502 {object} ErrorResponse
// @Router /categories [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := loader.Categories(r.Context())
	if err != nil {
		writeError(w, err, "categories")
		return
	}
	respond(w, http.StatusOK, CategoriesResult{Data: cats})
}

// CreateCategoryHandler godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {array} ValidationError
// @Router /categories [post]
// @Security BearerAuth
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := categoryRepo.Create(r.Context(), models.Category{Name: strings.TrimSpace(req.Name), Icon: req.Icon})
	if err != nil {
		writeError(w, err, "category")
		return
	}

	notices.Notify(r.Context(), notice.Success("Category created successfully"))
	respond(w, http.StatusCreated, created)
}

// UpdateCategoryHandler godoc
// @Summary Update a category
// @Description Renaming a category moves its items to the new name. Names must be unique.
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body CategoryPatchRequest true "Fields to change"
// @Success 200 {object} models.Category
// @Failure 400 {array} ValidationError
// @Failure 404 {string} string "Category not found"
// @Router /categories/{id} [put]
// @Security BearerAuth
func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}

	var req CategoryPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	before, err := categoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "category")
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	updated, err := categoryRepo.Update(r.Context(), id, repo.CategoryPatch{Name: req.Name, Icon: req.Icon})
	if err != nil {
		writeError(w, err, "category")
		return
	}

	if updated.Name != before.Name {
		items, err := inventoryRepo.GetByCategory(r.Context(), before.Name)
		if err != nil {
			writeError(w, err, "items")
			return
		}
		for _, it := range items {
			if _, err := inventoryRepo.Update(r.Context(), it.ID, repo.InventoryPatch{Category: &updated.Name}); err != nil {
				writeError(w, err, "item")
				return
			}
		}
	}

	notices.Notify(r.Context(), notice.Success("Category updated successfully"))
	respond(w, http.StatusOK, updated)
}

// DeleteCategoryHandler godoc
// @Summary Delete a category
// @Description Items keep their category name after the category is deleted.
// @Tags categories
// @Param id path int true "Category ID"
// @Param confirm query bool true "Must be true"
// @Success 204 "No Content"
// @Failure 404 {string} string "Category not found"
// @Failure 428 {object} ErrorResponse
// @Router /categories/{id} [delete]
// @Security BearerAuth
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "category")
	if !ok || !confirmed(w, r) {
		return
	}

	if _, err := categoryRepo.Delete(r.Context(), id); err != nil {
		writeError(w, err, "category")
		return
	}

	notices.Notify(r.Context(), notice.Success("Category deleted successfully"))
	w.WriteHeader(http.StatusNoContent)
}
