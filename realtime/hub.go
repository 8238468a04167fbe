package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event represents a message sent to websocket clients
type Event struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

type Client struct {
	userID string // empty for anonymous viewers
	conn   *websocket.Conn
	send   chan []byte
}

type outbound struct {
	userID     string // empty means everyone
	data       []byte // may be nil when only disconnecting
	disconnect bool
}

// Hub fans game events out to websocket clients, either to everyone or to
// the connections of a single player.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	stop       chan struct{}
	mu         sync.RWMutex
	logger     *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if msg.userID != "" && client.userID != msg.userID {
					continue
				}
				if msg.data != nil {
					select {
					case client.send <- msg.data:
					default:
						h.remove(client)
						continue
					}
				}
				if msg.disconnect {
					h.remove(client)
				}
			}
			h.mu.Unlock()
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	close(h.stop)
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ConnectedUsers counts distinct signed-in players with an open connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[string]struct{})
	for client := range h.clients {
		if client.userID != "" {
			seen[client.userID] = struct{}{}
		}
	}
	return len(seen)
}

func (h *Hub) enqueue(userID string, event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("realtime: failed to marshal event")
		return
	}
	select {
	case h.broadcast <- outbound{userID: userID, data: encoded}:
	default:
		h.logger.WithField("type", event.Type).Warn("realtime: dropping event, broadcast channel full")
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(eventType string, payload map[string]interface{}) {
	h.enqueue("", Event{Type: eventType, Payload: payload})
}

// SendToUser sends an event to the connections of one player.
func (h *Hub) SendToUser(userID, eventType string, payload map[string]interface{}) {
	if userID == "" {
		return
	}
	h.enqueue(userID, Event{Type: eventType, Payload: payload})
}

// Disconnect closes every connection of a player once the events already
// queued for them are delivered.
func (h *Hub) Disconnect(userID string) {
	if userID == "" {
		return
	}
	select {
	case h.broadcast <- outbound{userID: userID, disconnect: true}:
	case <-h.stop:
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers a client for userID, which
// may be empty.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("realtime: websocket upgrade error")
		return
	}
	client := &Client{userID: userID, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
	case <-h.stop:
		conn.Close()
		return
	}

	// writer
	go func() {
		for msg := range client.send {
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		client.conn.Close()
	}()

	// reader (just consume pings/close)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}
