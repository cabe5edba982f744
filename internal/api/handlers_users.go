package api

import (
	"net/http"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

type createUserRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Nickname   string  `json:"nickname"`
	Role       string  `json:"role"`
	HourlyRate float64 `json:"hourly_rate"`
}

// POST /api/users (manage_users)
func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := a.Users.Create(r.Context(), repo.CreateUserInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Nickname:   req.Nickname,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, u)
}

// GET /api/users (manage_users)
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	out, err := a.Users.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/users/{id} — manage_users либо свой профиль.
func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !auth.AllowSelf(auth.CurrentIdentity(r), models.PermManageUsers, id) {
		models.WriteForbidden(w)
		return
	}
	u, err := a.Users.GetWithPermissions(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

// PUT /api/users/{id} — manage_users либо свой профиль (без смены роли/ставки).
func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ident := auth.CurrentIdentity(r)
	manager := auth.Allow(ident, models.PermManageUsers)
	if !manager && ident.User.ID != id {
		models.WriteForbidden(w)
		return
	}
	var req struct {
		FirstName  *string  `json:"first_name"`
		LastName   *string  `json:"last_name"`
		Nickname   *string  `json:"nickname"`
		Role       *string  `json:"role"`
		HourlyRate *float64 `json:"hourly_rate"`
		IsActive   *bool    `json:"is_active"`
	}
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	in := repo.UpdateUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Nickname:   req.Nickname,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		IsActive:   req.IsActive,
	}
	if !manager {
		// self-доступ не даёт менять роль, ставку и активность
		in.Role, in.HourlyRate, in.IsActive = nil, nil, nil
	}
	u, err := a.Users.Update(r.Context(), id, in)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

// DELETE /api/users/{id} (manage_users): hard-delete без зависимостей,
// deactivate при их наличии.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	deactivated, err := a.Users.Delete(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"deactivated": deactivated})
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// PUT /api/users/{id}/permissions (manage_users)
func (a *API) SetUserPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req setPermissionsRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := a.Users.SetPermissions(r.Context(), id, req.Permissions); err != nil {
		a.writeErr(w, err)
		return
	}
	u, err := a.Users.GetWithPermissions(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}
