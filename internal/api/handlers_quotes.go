package api

import (
	"net/http"
	"strconv"
	"time"

	"keel/internal/auth"
	"keel/internal/models"
	"keel/internal/repo"
)

type quoteRequest struct {
	CompanyID  uint               `json:"company_id"`
	ProjectID  *uint              `json:"project_id"`
	Status     string             `json:"status"`
	Items      []models.QuoteItem `json:"items"`
	ValidUntil *time.Time         `json:"valid_until"`
	Notes      string             `json:"notes"`
}

func (req *quoteRequest) input() repo.QuoteInput {
	return repo.QuoteInput{
		CompanyID:  req.CompanyID,
		ProjectID:  req.ProjectID,
		Status:     req.Status,
		Items:      req.Items,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
	}
}

// POST /api/quotes (manage_quotes)
func (a *API) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ident := auth.CurrentIdentity(r)
	q, err := a.Quotes.Create(r.Context(), ident.User.ID, req.input())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, q)
}

// GET /api/quotes?company_id=
func (a *API) ListQuotes(w http.ResponseWriter, r *http.Request) {
	var companyID uint
	if v, err := strconv.ParseUint(r.URL.Query().Get("company_id"), 10, 32); err == nil {
		companyID = uint(v)
	}
	out, err := a.Quotes.List(r.Context(), companyID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/quotes/{id}
func (a *API) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	q, err := a.Quotes.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, q)
}

// PUT /api/quotes/{id} (manage_quotes)
func (a *API) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	q, err := a.Quotes.Update(r.Context(), id, req.input())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, q)
}

// DELETE /api/quotes/{id} (manage_quotes)
func (a *API) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.Quotes.Delete(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
