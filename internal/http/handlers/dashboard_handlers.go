package handlers

import "net/http"

// DashboardHandler godoc
// @Summary Dashboard summary
// @Description Stock counts, pending requests, the five latest activities and the category overview.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.Summary
// @Failure 502 {object} ErrorResponse
// @Router /dashboard [get]
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := loader.Dashboard(r.Context())
	if err != nil {
		writeError(w, err, "dashboard")
		return
	}
	respond(w, http.StatusOK, summary)
}

// ReportsHandler godoc
// @Summary Inventory reports
// @Description Estimated value, request status breakdown, category distribution, stock levels and monthly requests.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.Report
// @Failure 502 {object} ErrorResponse
// @Router /reports [get]
func ReportsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := loader.Reports(r.Context())
	if err != nil {
		writeError(w, err, "reports")
		return
	}
	respond(w, http.StatusOK, report)
}
