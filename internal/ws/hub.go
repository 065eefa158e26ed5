package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatusMessage is pushed to a letter's sender when an admin records a
// decision, so an open dashboard updates without a reload.
type StatusMessage struct {
	Type      string `json:"type"`
	SuratID   string `json:"surat_id"`
	Subject   string `json:"subject_surat,omitempty"`
	Status    string `json:"status"`
	Alasan    string `json:"alasan,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type notification struct {
	userID  string
	payload []byte
}

// NotificationHub fans status updates out to connected dashboards, one
// connection per user. Channel-driven; only Run touches the client map.
type NotificationHub struct {
	register   chan *client
	unregister chan *client
	notify     chan notification
	clients    map[string]*client
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		register:   make(chan *client),
		unregister: make(chan *client),
		notify:     make(chan notification, 256),
		clients:    make(map[string]*client),
	}
}

func (h *NotificationHub) Run() {
	for {
		select {
		case c := <-h.register:
			if existing, ok := h.clients[c.userID]; ok {
				existing.conn.Close()
			}
			h.clients[c.userID] = c
		case c := <-h.unregister:
			if stored, ok := h.clients[c.userID]; ok && stored == c {
				delete(h.clients, c.userID)
			}
		case msg := <-h.notify:
			if c, ok := h.clients[msg.userID]; ok {
				select {
				case c.send <- msg.payload:
				default:
					c.conn.Close()
					delete(h.clients, msg.userID)
				}
			}
		}
	}
}

// Notify queues a status update for one user. Dropping is fine: the page
// shows the same data on its next fetch.
func (h *NotificationHub) Notify(userID string, message StatusMessage) {
	if h == nil || userID == "" {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	h.notify <- notification{userID: userID, payload: data}
}

type client struct {
	hub    *NotificationHub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

func newClient(hub *NotificationHub, conn *websocket.Conn, userID string) *client {
	return &client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
