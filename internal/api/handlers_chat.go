package api

import (
	"context"
	"net/http"
	"strconv"

	"keel/internal/auth"
	"keel/internal/hub"
	"keel/internal/models"
	"keel/internal/repo"
)

type sendMessageRequest struct {
	ReceiverID   *uint  `json:"receiver_id"`
	GroupID      *uint  `json:"group_id"`
	Content      string `json:"content"`
	AttachmentID *uint  `json:"attachment_id"`
}

// POST /api/chat/messages (use_chat). Вложение проверяется на лимит размера
// до записи: превышение — InvalidInput, ничего не сохраняется.
func (a *API) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ident := auth.CurrentIdentity(r)

	if req.AttachmentID != nil {
		f, err := a.Files.Get(r.Context(), *req.AttachmentID)
		if err != nil {
			a.writeErr(w, err)
			return
		}
		if f.Size > a.cfg.Chat.MaxAttachmentMB<<20 {
			models.WriteError(w, http.StatusBadRequest, "attachment exceeds size limit")
			return
		}
	}

	m, err := a.Chat.SendMessage(r.Context(), repo.SendMessageInput{
		SenderID:     ident.User.ID,
		ReceiverID:   req.ReceiverID,
		GroupID:      req.GroupID,
		Content:      req.Content,
		AttachmentID: req.AttachmentID,
	})
	if err != nil {
		a.writeErr(w, err)
		return
	}

	// realtime-доставка — best-effort, ответ её не ждёт
	a.runEffects([]Effect{func(_ context.Context) {
		a.Hub.RouteMessage(hub.ChatPayload{
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			GroupID:    m.GroupID,
			Content:    m.Content,
		})
	}})
	models.WriteJSON(w, http.StatusCreated, m)
}

// GET /api/chat/messages?peer_id=|group_id=&limit=
func (a *API) ListChatMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ident := auth.CurrentIdentity(r)
	limit := 100
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if raw := q.Get("group_id"); raw != "" {
		gid, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			models.WriteError(w, http.StatusBadRequest, "invalid group_id")
			return
		}
		out, err := a.Chat.GroupHistory(r.Context(), uint(gid), ident.User.ID, limit)
		if err != nil {
			a.writeErr(w, err)
			return
		}
		models.WriteJSON(w, http.StatusOK, out)
		return
	}
	peer, err := strconv.ParseUint(q.Get("peer_id"), 10, 32)
	if err != nil || peer == 0 {
		models.WriteError(w, http.StatusBadRequest, "peer_id or group_id required")
		return
	}
	out, err := a.Chat.DirectHistory(r.Context(), ident.User.ID, uint(peer), limit)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// POST /api/chat/messages/read — пометить прочитанным диалог или группу.
func (a *API) MarkChatRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeerID  *uint `json:"peer_id"`
		GroupID *uint `json:"group_id"`
	}
	if err := decode(r, &req); err != nil || (req.PeerID == nil) == (req.GroupID == nil) {
		models.WriteError(w, http.StatusBadRequest, "peer_id or group_id required")
		return
	}
	ident := auth.CurrentIdentity(r)
	var err error
	if req.PeerID != nil {
		err = a.Chat.MarkDirectRead(r.Context(), ident.User.ID, *req.PeerID)
	} else {
		err = a.Chat.MarkGroupRead(r.Context(), *req.GroupID, ident.User.ID)
	}
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type createGroupRequest struct {
	Name      string `json:"name"`
	MemberIDs []uint `json:"member_ids"`
}

// POST /api/chat/groups
func (a *API) CreateChatGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decode(r, &req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ident := auth.CurrentIdentity(r)
	g, err := a.Chat.CreateGroup(r.Context(), req.Name, ident.User.ID, req.MemberIDs)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, g)
}

// GET /api/chat/groups — группы вызывающего.
func (a *API) ListChatGroups(w http.ResponseWriter, r *http.Request) {
	ident := auth.CurrentIdentity(r)
	out, err := a.Chat.ListGroups(r.Context(), ident.User.ID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, out)
}

// GET /api/chat/groups/{id}
func (a *API) GetChatGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ident := auth.CurrentIdentity(r)
	member, err := a.Chat.IsGroupMember(r.Context(), id, ident.User.ID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if !member {
		models.WriteForbidden(w)
		return
	}
	g, err := a.Chat.GetGroup(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, g)
}

// POST /api/chat/groups/{id}/members — добавлять может только админ группы.
func (a *API) AddChatGroupMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		models.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := decode(r, &req); err != nil || req.UserID == 0 {
		models.WriteError(w, http.StatusBadRequest, "user_id required")
		return
	}
	ident := auth.CurrentIdentity(r)
	g, err := a.Chat.GetGroup(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	isAdmin := false
	for _, m := range g.Members {
		if m.UserID == ident.User.ID && m.Role == "admin" {
			isAdmin = true
			break
		}
	}
	if !isAdmin {
		models.WriteForbidden(w)
		return
	}
	if err := a.Chat.AddGroupMember(r.Context(), id, req.UserID); err != nil {
		a.writeErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}
