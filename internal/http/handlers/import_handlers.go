package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
)

var importColumns = []string{"name", "category", "quantity", "minstock", "unit", "location"}

type csvRow struct {
	Name     string
	Category string
	Quantity int
	MinStock int
	Unit     string
	Location string
	Tags     string
	Owner    string
}

func parseCSV(file io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	reader.FieldsPerRecord = -1
	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		rows = append(rows, csvRow{
			Name:     cell(record, "name"),
			Category: cell(record, "category"),
			Quantity: parseInt(cell(record, "quantity")),
			MinStock: parseInt(cell(record, "minstock")),
			Unit:     cell(record, "unit"),
			Location: cell(record, "location"),
			Tags:     cell(record, "tags"),
			Owner:    cell(record, "owner"),
		})
	}
	return rows, nil
}

func validateRow(r csvRow) error {
	switch {
	case r.Name == "":
		return errors.New("missing name")
	case r.Category == "":
		return errors.New("missing category")
	case r.Quantity < 0:
		return errors.New("invalid quantity")
	case r.MinStock < 0:
		return errors.New("invalid minStock")
	case r.Unit == "":
		return errors.New("missing unit")
	case r.Location == "":
		return errors.New("missing location")
	}
	return nil
}

// parseInt maps an unreadable number to -1 so validateRow rejects it.
func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}

// ImportItemsHandler godoc
// @Summary Import inventory items via CSV
// @Description Columns: name, category, quantity, minStock, unit, location and optionally tags and owner.
// @Description Rows are matched to existing items by name (case-insensitive).
// @Tags inventory
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportItemsResult
// @Failure 400 {string} string "Invalid file"
// @Failure 502 {object} ErrorResponse
// @Router /inventory/import [post]
// @Security BearerAuth
func ImportItemsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := inventoryRepo.GetAll(r.Context())
	if err != nil {
		writeError(w, err, "inventory")
		return
	}
	byName := make(map[string]models.InventoryItem, len(existing))
	for _, it := range existing {
		byName[strings.ToLower(it.Name)] = it
	}

	result := ImportItemsResult{Errors: []ValidationError{}}
	for i, row := range rows {
		rowNum := fmt.Sprintf("row %d", i+2) // header is row 1

		if err := validateRow(row); err != nil {
			result.Errors = append(result.Errors, ValidationError{Field: rowNum, Description: err.Error()})
			continue
		}

		if found, ok := byName[strings.ToLower(row.Name)]; ok {
			if mode == "skip" {
				result.Errors = append(result.Errors, ValidationError{Field: rowNum, Description: fmt.Sprintf("item '%s' already exists", row.Name)})
				continue
			}
			updated, err := inventoryRepo.Update(r.Context(), found.ID, repo.InventoryPatch{
				Category: &row.Category,
				Quantity: &row.Quantity,
				MinStock: &row.MinStock,
				Unit:     &row.Unit,
				Location: &row.Location,
				Tags:     &row.Tags,
				Owner:    &row.Owner,
			})
			if err != nil {
				result.Errors = append(result.Errors, ValidationError{Field: rowNum, Description: fmt.Sprintf("failed to update '%s'", row.Name)})
				continue
			}
			mailer.ItemChanged(&found, updated)
			byName[strings.ToLower(row.Name)] = updated
			result.UpdatedItemsCount++
			continue
		}

		created, err := inventoryRepo.Create(r.Context(), models.InventoryItem{
			Name:     row.Name,
			Category: row.Category,
			Quantity: row.Quantity,
			MinStock: row.MinStock,
			Unit:     row.Unit,
			Location: row.Location,
			Tags:     row.Tags,
			Owner:    row.Owner,
		})
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{Field: rowNum, Description: err.Error()})
			continue
		}
		mailer.ItemChanged(nil, created)
		byName[strings.ToLower(row.Name)] = created
		result.ImportedItemsCount++
	}

	if n := result.ImportedItemsCount + result.UpdatedItemsCount; n > 0 {
		notices.Notify(r.Context(), notice.Success(fmt.Sprintf("%d items imported", n)))
	}
	respond(w, http.StatusOK, result)
}
