package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"keel/internal/auth"
	"keel/internal/files"
	"keel/internal/logs"
	"keel/internal/models"
	"keel/internal/repo"
)

// POST /api/files — multipart upload (use_files).
func (a *API) UploadFile(w http.ResponseWriter, r *http.Request) {
	limit := a.cfg.Files.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit+4096)
	if err := r.ParseMultipartForm(limit); err != nil {
		models.WriteError(w, http.StatusBadRequest, "file too large or malformed upload")
		return
	}
	src, header, err := r.FormFile("file")
	if err != nil {
		models.WriteError(w, http.StatusBadRequest, "file required")
		return
	}
	defer src.Close()
	if header.Size > limit {
		models.WriteError(w, http.StatusBadRequest, "file too large")
		return
	}

	ident := auth.CurrentIdentity(r)
	stored, path, size, err := a.Storage.Save(src, header.Filename)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	f := models.File{
		OwnerID:      ident.User.ID,
		StoredName:   stored,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         size,
		Path:         path,
	}
	if pid, ok := pathUintFromForm(r, "project_id"); ok {
		f.ProjectID = &pid
	}
	if err := a.Files.Create(r.Context(), &f); err != nil {
		_ = a.Storage.Remove(stored)
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, f)
}

func pathUintFromForm(r *http.Request, field string) (uint, bool) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err == nil && id != 0
}

// GET /api/files — файлы, видимые вызывающему.
func (a *API) ListFiles(w http.ResponseWriter, r *http.Request) {
	ident := auth.CurrentIdentity(r)
	out, err := a.Files.ListVisible(r.Context(), ident.User.ID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// checkFileAccess грузит файл и гранты, резолвит действие.
func (a *API) checkFileAccess(r *http.Request, id uint, action string) (*models.File, error) {
	f, err := a.Files.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	grants, err := a.Files.Grants(r.Context(), id)
	if err != nil {
		return nil, err
	}
	ident := auth.CurrentIdentity(r)
	ok, err := files.CheckPermission(r.Context(), f, grants, ident.User.ID, action, a.Projects)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repo.ErrForbidden
	}
	return f, nil
}

// GET /api/files/{id}/download
func (a *API) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	f, err := a.checkFileAccess(r, id, models.FileActionRead)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	src, err := a.Storage.Open(f.StoredName)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	defer src.Close()

	a.logFileActivity(f.ID, auth.CurrentIdentity(r).User.ID, "download")

	if f.MimeType != "" {
		w.Header().Set("Content-Type", f.MimeType)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.OriginalName+`"`)
	_, _ = io.Copy(w, src)
}

// GET /api/files/{id} — метаданные (+аудит view).
func (a *API) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	f, err := a.checkFileAccess(r, id, models.FileActionRead)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.logFileActivity(f.ID, auth.CurrentIdentity(r).User.ID, "view")
	models.WriteJSON(w, http.StatusOK, f)
}

// logFileActivity — аудит fire-and-forget: ответ его не ждёт.
func (a *API) logFileActivity(fileID, userID uint, action string) {
	a.runEffects([]Effect{func(ctx context.Context) {
		err := a.Files.LogActivity(ctx, &models.FileActivity{
			FileID: fileID, UserID: userID, Action: action,
		})
		if err != nil {
			logs.Logger.Warnf("file activity log failed: %v", err)
		}
	}})
}

type grantRequest struct {
	GrantType string `json:"grant_type"`
	TargetID  *uint  `json:"target_id"`
	CanRead   bool   `json:"can_read"`
	CanWrite  bool   `json:"can_write"`
	CanDelete bool   `json:"can_delete"`
}

// PUT /api/files/{id}/permissions — только владелец; замена целиком.
func (a *API) SetFilePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	f, err := a.Files.Get(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	ident := auth.CurrentIdentity(r)
	if f.OwnerID != ident.User.ID {
		models.WriteForbidden(w)
		return
	}
	var req struct {
		Grants []grantRequest `json:"permissions"`
	}
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	grants := make([]models.FilePermission, 0, len(req.Grants))
	for _, g := range req.Grants {
		switch g.GrantType {
		case models.GrantUser, models.GrantProject, models.GrantTeam, models.GrantPublic:
		default:
			models.WriteError(w, http.StatusBadRequest, "unknown grant type: "+g.GrantType)
			return
		}
		grants = append(grants, models.FilePermission{
			GrantType: g.GrantType,
			TargetID:  g.TargetID,
			CanRead:   g.CanRead,
			CanWrite:  g.CanWrite,
			CanDelete: g.CanDelete,
		})
	}
	if err := a.Files.ReplaceGrants(r.Context(), id, grants); err != nil {
		a.writeErr(w, err)
		return
	}
	a.logFileActivity(id, ident.User.ID, "share")
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DELETE /api/files/{id}
func (a *API) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	f, err := a.checkFileAccess(r, id, models.FileActionDelete)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if err := a.Files.Delete(r.Context(), id); err != nil {
		a.writeErr(w, err)
		return
	}
	if err := a.Storage.Remove(f.StoredName); err != nil {
		logs.Logger.Warnf("file %d: disk remove failed: %v", id, err)
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
