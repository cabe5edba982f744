// Package api — HTTP-обработчики REST-поверхности.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"keel/config"
	"keel/internal/auth"
	"keel/internal/files"
	"keel/internal/hub"
	"keel/internal/mailer"
	"keel/internal/models"
	"keel/internal/notify"
	"keel/internal/repo"
)

type API struct {
	cfg *config.Config

	Users      *repo.UserStore
	Companies  *repo.CompanyStore
	Projects   *repo.ProjectStore
	Tasks      *repo.TaskStore
	Timesheets *repo.TimesheetStore
	Notifs     *repo.NotificationStore
	Files      *repo.FileStore
	Chat       *repo.ChatStore
	Calendar   *repo.CalendarStore
	Quotes     *repo.QuoteStore
	Settings   *repo.SettingStore
	Reports    *repo.ReportStore

	Tokens     *auth.Tokens
	Hub        *hub.Hub
	Dispatcher *notify.Dispatcher
	Mailer     *mailer.Mailer
	Storage    *files.Storage
}

func New(cfg *config.Config) *API { return &API{cfg: cfg} }

// writeErr переводит sentinel-ошибки repo-слоя в статусы и единый JSON.
func (a *API) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		models.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrForbidden):
		models.WriteForbidden(w)
	case errors.Is(err, repo.ErrConflict):
		models.WriteError(w, http.StatusConflict, "conflict")
	case errors.Is(err, repo.ErrInvalidInput):
		models.WriteError(w, http.StatusBadRequest, "invalid input")
	default:
		msg := "internal server error"
		if a.cfg.Server.DevMode {
			msg = err.Error()
		}
		models.WriteError(w, http.StatusInternalServerError, msg)
	}
}

func pathID(r *http.Request) (uint, bool) { return pathUintVar(r, "id") }

func pathUintVar(r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// require — гейт по праву из каталога; admin проходит всегда.
func (a *API) require(permission string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.Allow(auth.CurrentIdentity(r), permission) {
			models.WriteForbidden(w)
			return
		}
		next(w, r)
	}
}
