package api

import (
	"net/http"
	"strconv"
	"time"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

type taskRequest struct {
	ProjectID   *uint      `json:"project_id"`
	AssigneeID  *uint      `json:"assignee_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// POST /api/tasks (manage_tasks)
func (a *API) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ident := auth.CurrentIdentity(r)
	t, err := a.Tasks.Create(r.Context(), ident.User.ID, repo.CreateTaskInput{
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.runEffects(taskAssignedEffects(a, t))
	models.WriteJSON(w, http.StatusCreated, t)
}

// GET /api/tasks — manage_tasks видит всё, остальные только свои
// (созданные или назначенные им).
func (a *API) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	}
	if v, err := strconv.ParseUint(q.Get("project_id"), 10, 32); err == nil {
		f.ProjectID = uint(v)
	}
	if v, err := strconv.ParseUint(q.Get("assignee_id"), 10, 32); err == nil {
		f.AssigneeID = uint(v)
	}
	ident := auth.CurrentIdentity(r)
	if !auth.Allow(ident, models.PermManageTasks) {
		f.VisibleTo = ident.User.ID
	}
	out, err := a.Tasks.List(r.Context(), f)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/tasks/{id} — manage_tasks, создатель или исполнитель.
func (a *API) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	t, err := a.Tasks.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	ident := auth.CurrentIdentity(r)
	own := t.CreatedByID == ident.User.ID ||
		(t.AssigneeID != nil && *t.AssigneeID == ident.User.ID)
	if !own && !auth.Allow(ident, models.PermManageTasks) {
		models.WriteForbidden(w)
		return
	}
	models.WriteJSON(w, http.StatusOK, t)
}

// PUT /api/tasks/{id} (manage_tasks)
func (a *API) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		ProjectID   *uint      `json:"project_id"`
		AssigneeID  *uint      `json:"assignee_id"`
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	t, prevAssignee, err := a.Tasks.Update(r.Context(), id, repo.UpdateTaskInput{
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		a.writeErr(w, err)
		return
	}
	// эффекты только при реальной смене исполнителя
	if t.AssigneeID != nil && (prevAssignee == nil || *prevAssignee != *t.AssigneeID) {
		a.runEffects(taskAssignedEffects(a, t))
	}
	models.WriteJSON(w, http.StatusOK, t)
}

// POST /api/tasks/{id}/confirm — accept|reject от исполнителя.
func (a *API) ConfirmTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := decode(r, &req); err != nil || (req.Action != "accept" && req.Action != "reject") {
		models.WriteError(w, http.StatusBadRequest, "action must be accept or reject")
		return
	}
	ident := auth.CurrentIdentity(r)
	accepted := req.Action == "accept"
	t, err := a.Tasks.Confirm(r.Context(), id, ident.User.ID, accepted)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.runEffects(taskConfirmedEffects(a, t, accepted))
	models.WriteJSON(w, http.StatusOK, t)
}

// DELETE /api/tasks/{id} (manage_tasks)
func (a *API) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.Tasks.Delete(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
