package api

import (
	"net/http"
	"strconv"
	"time"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

// POST /api/timesheets/start
func (a *API) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID uint `json:"task_id"`
	}
	if err := decode(r, &req); err != nil || req.TaskID == 0 {
		models.WriteError(w, http.StatusBadRequest, "task_id required")
		return
	}
	ident := auth.CurrentIdentity(r)
	manageAll := auth.AllowAny(ident, models.PermManageTimesheets, models.PermManageTasks)
	ts, err := a.Timesheets.Start(r.Context(), ident.User.ID, req.TaskID, manageAll)
	if err == repo.ErrConflict {
		models.WriteError(w, http.StatusConflict, "timer already running")
		return
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, ts)
}

// POST /api/timesheets/stop
func (a *API) StopTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	_ = decode(r, &req) // тело опционально
	ident := auth.CurrentIdentity(r)
	ts, err := a.Timesheets.Stop(r.Context(), ident.User.ID, req.Description)
	if err == repo.ErrNotFound {
		models.WriteError(w, http.StatusNotFound, "no running timer")
		return
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, ts)
}

// GET /api/timesheets/current — открытый таймер вызывающего, если есть.
func (a *API) CurrentTimer(w http.ResponseWriter, r *http.Request) {
	ident := auth.CurrentIdentity(r)
	ts, err := a.Timesheets.Open(r.Context(), ident.User.ID)
	if err == repo.ErrNotFound {
		models.WriteJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, ts)
}

// POST /api/timesheets — ручная запись.
func (a *API) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID      uint       `json:"task_id"`
		Duration    int        `json:"duration"`
		Description string     `json:"description"`
		WorkDate    *time.Time `json:"work_date"`
	}
	if err := decode(r, &req); err != nil || req.TaskID == 0 {
		models.WriteError(w, http.StatusBadRequest, "task_id required")
		return
	}
	ident := auth.CurrentIdentity(r)
	manageAll := auth.AllowAny(ident, models.PermManageTimesheets, models.PermManageTasks)
	ts, err := a.Timesheets.ManualEntry(r.Context(), ident.User.ID, repo.ManualEntryInput{
		TaskID:      req.TaskID,
		Duration:    req.Duration,
		Description: req.Description,
		WorkDate:    req.WorkDate,
	}, manageAll)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, ts)
}

// GET /api/timesheets — свои; manage_timesheets может смотреть чужие/все.
func (a *API) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ident := auth.CurrentIdentity(r)
	f := repo.TimesheetFilter{UserID: ident.User.ID}
	if auth.Allow(ident, models.PermManageTimesheets) {
		f.UserID = 0
		if v, err := strconv.ParseUint(q.Get("user_id"), 10, 32); err == nil {
			f.UserID = uint(v)
		}
	}
	if v, err := strconv.ParseUint(q.Get("task_id"), 10, 32); err == nil {
		f.TaskID = uint(v)
	}
	if t, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		f.From = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		f.To = &t
	}
	out, err := a.Timesheets.List(r.Context(), f)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/timesheets/{id} — manage_timesheets либо своя запись.
func (a *API) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ts, err := a.Timesheets.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if !auth.AllowSelf(auth.CurrentIdentity(r), models.PermManageTimesheets, ts.UserID) {
		models.WriteForbidden(w)
		return
	}
	models.WriteJSON(w, http.StatusOK, ts)
}

// DELETE /api/timesheets/{id} — manage_timesheets либо своя запись.
func (a *API) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ts, err := a.Timesheets.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if !auth.AllowSelf(auth.CurrentIdentity(r), models.PermManageTimesheets, ts.UserID) {
		models.WriteForbidden(w)
		return
	}
	if err := a.Timesheets.Delete(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
