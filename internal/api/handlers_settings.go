package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"keel/internal/models"
)

// GET /api/settings (manage_settings)
func (a *API) ListSettings(w http.ResponseWriter, r *http.Request) {
	out, err := a.Settings.List(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// PUT /api/settings/{key} (manage_settings)
func (a *API) SetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !models.ValidSettingKey(key) {
		models.WriteError(w, http.StatusBadRequest, "malformed setting key")
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := a.Settings.Set(r.Context(), key, req.Value); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, models.Setting{Key: key, Value: req.Value})
}

// DELETE /api/settings/{key} (manage_settings)
func (a *API) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := a.Settings.Delete(r.Context(), key); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
