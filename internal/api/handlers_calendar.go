package api

import (
	"net/http"
	"time"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

type eventRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	AllDay         bool      `json:"all_day"`
	ParticipantIDs []uint    `json:"participant_ids"`
}

func (req *eventRequest) input() repo.CreateEventInput {
	return repo.CreateEventInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		AllDay:         req.AllDay,
		ParticipantIDs: req.ParticipantIDs,
	}
}

// POST /api/calendar/events (use_calendar)
func (a *API) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ident := auth.CurrentIdentity(r)
	e, err := a.Calendar.Create(r.Context(), ident.User.ID, req.input())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, e)
}

// GET /api/calendar/events?from=&to=
func (a *API) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ident := auth.CurrentIdentity(r)
	var from, to *time.Time
	if t, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		from = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		to = &t
	}
	out, err := a.Calendar.List(r.Context(), ident.User.ID, from, to)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/calendar/events/{id}
func (a *API) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ident := auth.CurrentIdentity(r)
	e, err := a.Calendar.Get(r.Context(), id, ident.User.ID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, e)
}

// PUT /api/calendar/events/{id} — только создатель.
func (a *API) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req eventRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ident := auth.CurrentIdentity(r)
	e, err := a.Calendar.Update(r.Context(), id, ident.User.ID, req.input())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, e)
}

// DELETE /api/calendar/events/{id} — только создатель.
func (a *API) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ident := auth.CurrentIdentity(r)
	if err := a.Calendar.Delete(r.Context(), id, ident.User.ID); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
