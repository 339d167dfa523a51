package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Message is the frame pushed to websocket clients
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// Hub keeps the open notification sockets of each user. A user may be
// connected from several tabs or devices at once.
type Hub struct {
	upgrader websocket.Upgrader
	mutex    sync.Mutex
	clients  map[string]map[*client]struct{}
}

// NewHub returns a hub accepting websocket upgrades from the given origins. An
// empty list or "*" accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: make(map[string]map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Serve upgrades the request and keeps the socket registered for userID until
// the client goes away. Clients are not expected to send anything.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().With(err).Warnw("websocket upgrade failed", "user_id", userID)
		return
	}
	c := h.register(userID, conn)
	defer h.unregister(userID, c)

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Send pushes an event to every socket of userID and returns how many received it
func (h *Hub) Send(userID, event string, data interface{}) int {
	h.mutex.Lock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mutex.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(Message{Event: event, Data: data}); err != nil {
			zap.S().With(err).Debugw("dropping notification socket", "user_id", userID)
			h.unregister(userID, c)
			continue
		}
		sent++
	}
	return sent
}

// Connections returns the number of open sockets of userID
func (h *Hub) Connections(userID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[userID])
}

func (h *Hub) register(userID string, conn *websocket.Conn) *client {
	c := &client{conn: conn}
	h.mutex.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mutex.Unlock()
	zap.S().Debugw("user connected to /ws/notifications", "user_id", userID)
	return c
}

func (h *Hub) unregister(userID string, c *client) {
	h.mutex.Lock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mutex.Unlock()
	c.conn.Close()
}
