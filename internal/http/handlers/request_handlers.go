package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/school-inventory/internal/listing"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/pages"
	"github.com/rogerio-castellano/school-inventory/internal/workflow"
)

// GetRequestsHandler godoc
// @Summary List supply requests
// @Description Search matches the requester, the department or the item name. Counts cover every request.
// @Tags requests
// @Produce json
// @Param search query string false "Case-insensitive search"
// @Param status query string false "pending, approved, rejected, fulfilled or all"
// @Param sort query string false "requestDate, requester, department, item, quantity or status"
// @Param order query string false "asc or desc"
// @Success 200 {object} RequestsSearchResult
// @Failure 400 {array} ValidationError
// @Failure 502 {object} ErrorResponse
// @Router /requests [get]
func GetRequestsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var errs []ValidationError

	f := listing.RequestFilter{Search: strings.TrimSpace(q.Get("search")), Status: q.Get("status")}
	if f.Status != "" && f.Status != listing.All && !models.RequestStatus(f.Status).Valid() {
		errs = append(errs, ValidationError{Field: "status", Description: "invalid status"})
	}
	s, err := listing.ParseSort(listing.ModeRequests, q.Get("sort"), q.Get("order"))
	if err != nil {
		errs = append(errs, ValidationError{Field: "sort", Description: err.Error()})
	}
	if len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	page, err := loader.Requests(r.Context(), f, s)
	if err != nil {
		writeError(w, err, "requests")
		return
	}

	respond(w, http.StatusOK, RequestsSearchResult{
		Data:   page.Requests,
		Meta:   Meta{TotalCount: page.TotalCount, VisibleCount: page.VisibleCount},
		Counts: page.Counts,
		Sort:   page.Sort,
	})
}

// requestRow resolves the item of a single request for display.
func requestRow(r *http.Request, req models.Request) pages.RequestRow {
	row := pages.RequestRow{
		Request:  req,
		ItemName: models.UnknownItemName,
		Badge:    workflow.BadgeFor(string(req.Status)),
		Actions:  workflow.Actions(req.Status),
	}
	if it, found, err := inventoryRepo.Lookup(r.Context(), req.ItemID); err == nil && found {
		row.ItemName = it.Name
		row.Unit = it.Unit
	}
	return row
}

// GetRequestHandler godoc
// @Summary Get a supply request
// @Tags requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} pages.RequestRow
// @Failure 400 {string} string "Invalid request ID"
// @Failure 404 {string} string "Request not found"
// @Router /requests/{id} [get]
func GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "request")
	if !ok {
		return
	}

	req, err := requestRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "request")
		return
	}
	respond(w, http.StatusOK, requestRow(r, req))
}

// CreateRequestHandler godoc
// @Summary Submit a supply request
// @Description New requests are pending and dated now.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body RequestCreateRequest true "Request"
// @Success 201 {object} pages.RequestRow
// @Failure 400 {array} ValidationError
// @Failure 502 {object} ErrorResponse
// @Router /requests [post]
// @Security BearerAuth
func CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body RequestCreateRequest
	if !decodeAndValidate(w, r, &body) {
		return
	}

	_, found, err := inventoryRepo.Lookup(r.Context(), int(body.ItemID))
	if err != nil {
		writeError(w, err, "item")
		return
	}
	if !found {
		respond(w, http.StatusBadRequest, []ValidationError{{Field: "itemId", Description: "item does not exist"}})
		return
	}

	created, err := requestRepo.Create(r.Context(), models.Request{
		ItemID:     int(body.ItemID),
		Quantity:   int(body.Quantity),
		Requester:  strings.TrimSpace(body.Requester),
		Department: strings.TrimSpace(body.Department),
		Notes:      body.Notes,
	})
	if err != nil {
		writeError(w, err, "request")
		return
	}

	notices.Notify(r.Context(), notice.Success("Request submitted successfully"))
	respond(w, http.StatusCreated, requestRow(r, created))
}

// TransitionRequestHandler godoc
// @Summary Approve, reject or fulfill a request
// @Description pending can be approved or rejected; approved can be fulfilled. Other moves are refused.
// @Tags requests
// @Produce json
// @Param id path int true "Request ID"
// @Param action path string true "approve, reject or fulfill"
// @Success 200 {object} pages.RequestRow
// @Failure 400 {string} string "Invalid request ID"
// @Failure 404 {string} string "Request not found"
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /requests/{id}/{action} [post]
// @Security BearerAuth
func TransitionRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "request")
	if !ok {
		return
	}
	action, err := workflow.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	_, updated, err := workflowSvc.Apply(r.Context(), nil, id, action)
	if err != nil {
		writeError(w, err, "request")
		return
	}
	respond(w, http.StatusOK, requestRow(r, updated))
}

// DeleteRequestHandler godoc
// @Summary Delete a supply request
// @Tags requests
// @Param id path int true "Request ID"
// @Param confirm query bool true "Must be true"
// @Success 204 "No Content"
// @Failure 400 {string} string "Invalid request ID"
// @Failure 404 {string} string "Request not found"
// @Failure 428 {object} ErrorResponse
// @Router /requests/{id} [delete]
// @Security BearerAuth
func DeleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "request")
	if !ok || !confirmed(w, r) {
		return
	}

	if _, err := requestRepo.Delete(r.Context(), id); err != nil {
		writeError(w, err, "request")
		return
	}

	notices.Notify(r.Context(), notice.Success("Request deleted successfully"))
	w.WriteHeader(http.StatusNoContent)
}
