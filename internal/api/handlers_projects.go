package api

import (
	"net/http"
	"time"

	"keel/internal/models"
)

type projectRequest struct {
	CompanyID   *uint      `json:"company_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// POST /api/projects (manage_projects)
func (a *API) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	p := models.Project{
		CompanyID:   req.CompanyID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Status != "" {
		p.Status = req.Status
	}
	if err := a.Projects.Create(r.Context(), &p); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, p)
}

// GET /api/projects
func (a *API) ListProjects(w http.ResponseWriter, r *http.Request) {
	out, err := a.Projects.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/projects/{id}
func (a *API) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := a.Projects.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, p)
}

// PUT /api/projects/{id} (manage_projects)
func (a *API) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := a.Projects.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	var req projectRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	p.CompanyID = req.CompanyID
	p.Name = req.Name
	p.Description = req.Description
	if req.Status != "" {
		p.Status = req.Status
	}
	p.StartDate = req.StartDate
	p.EndDate = req.EndDate
	if err := a.Projects.Update(r.Context(), p); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, p)
}

// DELETE /api/projects/{id} (manage_projects)
func (a *API) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.Projects.Delete(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type memberRequest struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// POST /api/projects/{id}/members (manage_projects)
func (a *API) AddProjectMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req memberRequest
	if err := decode(r, &req); err != nil || req.UserID == 0 {
		models.WriteError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if err := a.Projects.AddMember(r.Context(), id, req.UserID, req.Role); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// DELETE /api/projects/{id}/members/{userID} (manage_projects)
func (a *API) RemoveProjectMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID, ok := pathUintVar(r, "userID")
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := a.Projects.RemoveMember(r.Context(), id, userID); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
