package api

import (
	"net/http"
	"strconv"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

// GET /api/notifications?unread=true&limit=&offset=
func (a *API) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ident := auth.CurrentIdentity(r)
	f := repo.NotificationFilter{
		UserID:     ident.User.ID,
		UnreadOnly: q.Get("unread") == "true",
		Limit:      50,
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 200 {
		f.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	out, err := a.Notifs.List(r.Context(), f)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/notifications/unread-count
func (a *API) UnreadCount(w http.ResponseWriter, r *http.Request) {
	ident := auth.CurrentIdentity(r)
	n, err := a.Notifs.UnreadCount(r.Context(), ident.User.ID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// POST /api/notifications/{id}/read
func (a *API) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ident := auth.CurrentIdentity(r)
	if err := a.Notifs.MarkRead(r.Context(), id, ident.User.ID); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// POST /api/notifications/read-all
func (a *API) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	ident := auth.CurrentIdentity(r)
	if err := a.Notifs.MarkAllRead(r.Context(), ident.User.ID); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DELETE /api/notifications/{id}
func (a *API) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ident := auth.CurrentIdentity(r)
	if err := a.Notifs.Delete(r.Context(), id, ident.User.ID); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
