// Package hub держит realtime-состояние процесса: кто онлайн (пользователь →
// живое соединение), маршрутизацию чата и комнаты уведомлений. Карта
// присутствия — единственное разделяемое состояние, наружу торчат только
// SetOnline/SetOffline/Lookup.
package hub

import (
	"encoding/json"
	"sync"

	"keel/internal/logs"
)

// Имена событий двунаправленного канала.
const (
	EvUserLogin         = "user-login"
	EvActiveUsers       = "active-users"
	EvSendMessage       = "send-message"
	EvNewMessage        = "new-message"
	EvTyping            = "typing"
	EvUserTyping        = "user-typing"
	EvStopTyping        = "stop-typing"
	EvUserStopTyping    = "user-stop-typing"
	EvJoinNotifications = "join-notifications"
	EvLeaveNotifs       = "leave-notifications"
	EvNewNotification   = "new-notification"
	EvUnreadCount       = "unread-count-update"
)

type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// session — то, что хаб знает про соединение: куда писать и чей это сокет.
type session interface {
	ID() string
	Send(ev string, data any) bool // false = буфер переполнен/закрыт
}

type Hub struct {
	mu sync.Mutex
	// connID → сессия
	conns map[string]session
	// userID → connID; не больше одной записи на пользователя,
	// поздний логин перетирает ранний (last-connection-wins)
	online map[uint]string
	// комната уведомлений: userID → множество connID;
	// отдельное понятие от присутствия в чате
	notifRooms map[uint]map[string]bool
}

func New() *Hub {
	return &Hub{
		conns:      make(map[string]session),
		online:     make(map[uint]string),
		notifRooms: make(map[uint]map[string]bool),
	}
}

// Shutdown сбрасывает всё состояние (вызывается при остановке сервера).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns = make(map[string]session)
	h.online = make(map[uint]string)
	h.notifRooms = make(map[uint]map[string]bool)
}

func (h *Hub) register(s session) {
	h.mu.Lock()
	h.conns[s.ID()] = s
	h.mu.Unlock()
}

// unregister убирает соединение: обратный поиск по карте присутствия,
// выход из всех комнат уведомлений, затем рассылка нового списка онлайна.
func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	delete(h.conns, connID)
	changed := false
	for uid, cid := range h.online {
		if cid == connID {
			delete(h.online, uid)
			changed = true
			break
		}
	}
	for uid, room := range h.notifRooms {
		if room[connID] {
			delete(room, connID)
			if len(room) == 0 {
				delete(h.notifRooms, uid)
			}
		}
	}
	h.mu.Unlock()
	if changed {
		h.broadcastActiveUsers()
	}
}

// SetOnline привязывает пользователя к соединению по явному user-login.
// Прежняя привязка того же пользователя молча перетирается.
func (h *Hub) SetOnline(userID uint, connID string) {
	h.mu.Lock()
	h.online[userID] = connID
	h.mu.Unlock()
	h.broadcastActiveUsers()
}

func (h *Hub) SetOffline(userID uint) {
	h.mu.Lock()
	_, ok := h.online[userID]
	delete(h.online, userID)
	h.mu.Unlock()
	if ok {
		h.broadcastActiveUsers()
	}
}

// Lookup — connID пользователя, если тот онлайн.
func (h *Hub) Lookup(userID uint) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cid, ok := h.online[userID]
	return cid, ok
}

// OnlineUserIDs — текущее множество залогиненных пользователей.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint, 0, len(h.online))
	for uid := range h.online {
		out = append(out, uid)
	}
	return out
}

func (h *Hub) broadcastActiveUsers() {
	ids := h.OnlineUserIDs()
	h.mu.Lock()
	targets := make([]session, 0, len(h.conns))
	for _, s := range h.conns {
		targets = append(targets, s)
	}
	h.mu.Unlock()
	for _, s := range targets {
		s.Send(EvActiveUsers, ids)
	}
}

// sendToUser доставляет событие на текущее соединение пользователя.
// false — пользователь оффлайн; событие молча теряется (очередей нет).
func (h *Hub) sendToUser(userID uint, ev string, data any) bool {
	h.mu.Lock()
	cid, ok := h.online[userID]
	var s session
	if ok {
		s = h.conns[cid]
	}
	h.mu.Unlock()
	if s == nil {
		return false
	}
	return s.Send(ev, data)
}

func (h *Hub) broadcast(ev string, data any) {
	h.mu.Lock()
	targets := make([]session, 0, len(h.conns))
	for _, s := range h.conns {
		targets = append(targets, s)
	}
	h.mu.Unlock()
	for _, s := range targets {
		s.Send(ev, data)
	}
}

// JoinNotifications подписывает соединение на комнату уведомлений пользователя.
func (h *Hub) JoinNotifications(userID uint, connID string) {
	h.mu.Lock()
	room := h.notifRooms[userID]
	if room == nil {
		room = make(map[string]bool)
		h.notifRooms[userID] = room
	}
	room[connID] = true
	h.mu.Unlock()
}

func (h *Hub) LeaveNotifications(userID uint, connID string) {
	h.mu.Lock()
	if room := h.notifRooms[userID]; room != nil {
		delete(room, connID)
		if len(room) == 0 {
			delete(h.notifRooms, userID)
		}
	}
	h.mu.Unlock()
}

// Subscribed — есть ли у пользователя активная подписка на уведомления.
func (h *Hub) Subscribed(userID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.notifRooms[userID]) > 0
}

// PushNotification шлёт событие во все соединения комнаты пользователя.
// Возвращает false, если подписчиков нет.
func (h *Hub) PushNotification(userID uint, ev string, data any) bool {
	h.mu.Lock()
	var targets []session
	for cid := range h.notifRooms[userID] {
		if s := h.conns[cid]; s != nil {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()
	for _, s := range targets {
		s.Send(ev, data)
	}
	return len(targets) > 0
}

// ChatPayload — содержимое send-message/new-message.
type ChatPayload struct {
	SenderID   uint            `json:"sender_id"`
	ReceiverID *uint           `json:"receiver_id,omitempty"`
	GroupID    *uint           `json:"group_id,omitempty"`
	Content    string          `json:"content,omitempty"`
	Raw        json.RawMessage `json:"payload,omitempty"`
}

// RouteMessage: личное — адресату и эхо отправителю; без адресата — всем.
func (h *Hub) RouteMessage(p ChatPayload) {
	if p.ReceiverID == nil {
		h.broadcast(EvNewMessage, p)
		return
	}
	h.sendToUser(*p.ReceiverID, EvNewMessage, p)
	if !h.sendToUser(p.SenderID, EvNewMessage, p) {
		logs.Logger.Debugf("hub: echo to sender %d dropped (offline)", p.SenderID)
	}
}

type typingPayload struct {
	UserID     uint  `json:"user_id"`
	ReceiverID *uint `json:"receiver_id,omitempty"`
}

// RouteTyping доставляет индикатор только адресату; оффлайн — дропаем.
func (h *Hub) RouteTyping(from uint, to *uint, stop bool) {
	if to == nil {
		return
	}
	ev := EvUserTyping
	if stop {
		ev = EvUserStopTyping
	}
	h.sendToUser(*to, ev, typingPayload{UserID: from})
}
