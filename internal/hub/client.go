package hub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"keel/internal/logs"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// токен уже проверен HTTP-слоем, origin не ограничиваем
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client — одно websocket-соединение. userID появляется только после
// явного события user-login: транспорт сам по себе пользователя не знает.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	id     string
	userID uint
	send   chan []byte
	quit   chan struct{}
}

func (c *Client) ID() string { return c.id }

// Send сериализует событие в очередь записи. Полная очередь = медленный
// клиент; событие дропается, порядок остальных сохраняется (FIFO).
func (c *Client) Send(ev string, data any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		return false
	}
	msg, err := json.Marshal(Event{Event: ev, Data: raw})
	if err != nil {
		return false
	}
	select {
	case <-c.quit:
		return false
	case c.send <- msg:
		return true
	default:
		logs.Logger.Warnf("hub: send buffer full, dropping %s for conn %s", ev, c.id)
		return false
	}
}

// Serve апгрейдит запрос и запускает насосы чтения/записи.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logs.Logger.Warnf("hub: upgrade failed: %v", err)
		return
	}
	c := &Client{
		hub:  h,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
		quit: make(chan struct{}),
	}
	h.register(c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c.id)
		close(c.quit)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logs.Logger.Debugf("hub: read error conn %s: %v", c.id, err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev Event) {
	switch ev.Event {
	case EvUserLogin:
		var userID uint
		if err := json.Unmarshal(ev.Data, &userID); err != nil || userID == 0 {
			return
		}
		c.userID = userID
		c.hub.SetOnline(userID, c.id)

	case EvSendMessage:
		var p ChatPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		if c.userID != 0 {
			p.SenderID = c.userID
		}
		c.hub.RouteMessage(p)

	case EvTyping, EvStopTyping:
		var p struct {
			ReceiverID *uint `json:"receiver_id"`
		}
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		c.hub.RouteTyping(c.userID, p.ReceiverID, ev.Event == EvStopTyping)

	case EvJoinNotifications:
		var userID uint
		if err := json.Unmarshal(ev.Data, &userID); err != nil || userID == 0 {
			return
		}
		c.hub.JoinNotifications(userID, c.id)

	case EvLeaveNotifs:
		var userID uint
		if err := json.Unmarshal(ev.Data, &userID); err != nil || userID == 0 {
			return
		}
		c.hub.LeaveNotifications(userID, c.id)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-c.quit:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
