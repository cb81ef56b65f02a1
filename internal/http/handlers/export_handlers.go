package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"ID", "Name", "Category", "Quantity", "MinStock", "Unit", "Location", "Status", "LastUpdated", "Tags", "Owner"}

func exportRow(it models.InventoryItem) []string {
	return []string{
		strconv.Itoa(it.ID),
		it.Name,
		it.Category,
		strconv.Itoa(it.Quantity),
		strconv.Itoa(it.MinStock),
		it.Unit,
		it.Location,
		it.Status().Label(),
		it.LastUpdated.Format(time.RFC3339),
		it.Tags,
		it.Owner,
	}
}

// ExportInventoryHandler godoc
// @Summary Export inventory
// @Description Exports the items matching the same filters as the list, in list order.
// @Tags inventory
// @Produce json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format: csv, json or xlsx (default csv)"
// @Param search query string false "Name or location contains"
// @Param category query string false "Category name"
// @Param location query string false "Location"
// @Param stock query string false "all, low, out or good"
// @Param sort query string false "Sort key"
// @Param order query string false "asc or desc"
// @Success 200 {string} string "File content"
// @Failure 400 {array} ValidationError
// @Failure 502 {object} ErrorResponse
// @Router /inventory/export [get]
func ExportInventoryHandler(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" && format != "xlsx" {
		http.Error(w, "invalid format", http.StatusBadRequest)
		return
	}

	f, s, errs := inventoryQuery(r)
	if len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	items, err := inventoryRepo.GetAll(r.Context())
	if err != nil {
		writeError(w, err, "inventory")
		return
	}
	items = listing.VisibleInventory(items, f, s)

	filename := fmt.Sprintf("inventory-%s.%s", time.Now().Format("2006-01-02"), format)
	switch format {
	case "json":
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		respond(w, http.StatusOK, items)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		writer := csv.NewWriter(w)
		_ = writer.Write(exportHeader)
		for _, it := range items {
			_ = writer.Write(exportRow(it))
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			log.Error().Err(err).Msg("failed to write CSV export")
		}
	case "xlsx":
		if err := writeXLSX(w, filename, items); err != nil {
			log.Error().Err(err).Msg("failed to write XLSX export")
			http.Error(w, "failed to build spreadsheet", http.StatusInternalServerError)
		}
	}
}

func writeXLSX(w http.ResponseWriter, filename string, items []models.InventoryItem) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", toCells(exportHeader)); err != nil {
		return err
	}
	for i, it := range items {
		row := exportRow(it)
		cells := toCells(row)
		// numeric columns stay numeric in the sheet
		cells[0], cells[3], cells[4] = it.ID, it.Quantity, it.MinStock
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, err = f.WriteTo(w)
	return err
}

func toCells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
