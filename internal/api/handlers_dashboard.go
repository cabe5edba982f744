package api

import (
	"net/http"
	"time"

	"keel/internal/auth"
	"keel/internal/models"
)

// GET /api/dashboard
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident := auth.CurrentIdentity(r)
	sum, err := a.Reports.Dashboard(r.Context(), ident.User.ID, time.Now().UTC())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, sum)
}

// GET /api/reports/timesheets?from=&to= (view_reports)
func (a *API) TimesheetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "from required (RFC3339)")
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "to required (RFC3339)")
		return
	}
	rows, err := a.Reports.TimesheetReport(r.Context(), from, to)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, rows)
}
