package api

import (
	"net/http"

	"keel/internal/models"
)

type companyRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	VATID   string `json:"vat_id"`
	Notes   string `json:"notes"`
}

func (req *companyRequest) apply(c *models.Company) {
	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address
	c.VATID = req.VATID
	c.Notes = req.Notes
}

// POST /api/companies (manage_companies)
func (a *API) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var c models.Company
	req.apply(&c)
	if err := a.Companies.Create(r.Context(), &c); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, c)
}

// GET /api/companies
func (a *API) ListCompanies(w http.ResponseWriter, r *http.Request) {
	out, err := a.Companies.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/companies/{id}
func (a *API) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := a.Companies.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

// PUT /api/companies/{id} (manage_companies)
func (a *API) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := a.Companies.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	var req companyRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.apply(c)
	if err := a.Companies.Update(r.Context(), c); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

// DELETE /api/companies/{id} (manage_companies)
func (a *API) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.Companies.Delete(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
