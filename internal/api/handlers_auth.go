package api

import (
	"net/http"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token              string       `json:"token"`
	User               *models.User `json:"user"`
	MustChangePassword bool         `json:"must_change_password"`
}

// POST /api/auth/login
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.Password == "" {
		models.WriteError(w, http.StatusBadRequest, "email and password required")
		return
	}
	u, err := a.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// не раскрываем, что именно не совпало
		models.WriteUnauthenticated(w)
		return
	}
	token, err := a.Tokens.Issue(u.ID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, loginResponse{
		Token:              token,
		User:               u,
		MustChangePassword: u.MustChangePassword,
	})
}

// GET /api/auth/me
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.CurrentIdentity(r)
	models.WriteJSON(w, http.StatusOK, id.User)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// POST /api/auth/change-password
func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	id := auth.CurrentIdentity(r)
	err := a.Users.ChangePassword(r.Context(), id.User.ID, req.CurrentPassword, req.NewPassword)
	if err == repo.ErrForbidden {
		models.WriteError(w, http.StatusBadRequest, "current password does not match")
		return
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
