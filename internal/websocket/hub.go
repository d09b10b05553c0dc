package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/aurasflow/backend/internal/logger"
)

// Event types pushed to clients.
const (
	EventContentGenerated = "content:generated"
	EventPlanGenerated    = "plan:generated"
	EventPlanApproved     = "plan:approved"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the wire format for hub events.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub maintains the set of active clients and routes events to them.
// Generation and approval events are delivered per user.
type Hub struct {
	clients    map[*Client]bool
	userMap    map[string][]*Client
	broadcast  chan *broadcastMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type broadcastMessage struct {
	userID  string // empty means all clients
	msgType string
	payload interface{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		userMap:    make(map[string][]*Client),
		broadcast:  make(chan *broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if client.userID != "" {
				h.userMap[client.userID] = append(h.userMap[client.userID], client)
			}
			h.mu.Unlock()
			logger.Debug().Str("user_id", client.userID).Msg("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if clients, ok := h.userMap[client.userID]; ok {
					for i, c := range clients {
						if c == client {
							h.userMap[client.userID] = append(clients[:i], clients[i+1:]...)
							break
						}
					}
					if len(h.userMap[client.userID]) == 0 {
						delete(h.userMap, client.userID)
					}
				}
			}
			h.mu.Unlock()
			logger.Debug().Str("user_id", client.userID).Msg("websocket client disconnected")

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *broadcastMessage) {
	data, err := json.Marshal(Message{Type: msg.msgType, Payload: msg.payload})
	if err != nil {
		logger.Error().Err(err).Msg("marshal websocket message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.userID == "" {
		for client := range h.clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(h.clients, client)
			}
		}
		return
	}

	for _, client := range h.userMap[msg.userID] {
		select {
		case client.send <- data:
		default:
			close(client.send)
		}
	}
}

// BroadcastToAll sends a message to every connected client.
func (h *Hub) BroadcastToAll(msgType string, payload interface{}) {
	h.broadcast <- &broadcastMessage{msgType: msgType, payload: payload}
}

// BroadcastToUser sends a message to all of a user's connections.
func (h *Hub) BroadcastToUser(userID, msgType string, payload interface{}) {
	h.broadcast <- &broadcastMessage{userID: userID, msgType: msgType, payload: payload}
}

// OnlineUsers returns the IDs of users with at least one open connection.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.userMap))
	for userID := range h.userMap {
		users = append(users, userID)
	}
	return users
}

// ServeWs upgrades an HTTP request to a websocket connection. The JWT
// is passed as a query parameter because browsers cannot set headers
// on websocket upgrades.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, jwtSecret string) {
	token := r.URL.Query().Get("token")
	userID := ""

	if token != "" {
		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err == nil && parsed.Valid {
			userID = claims.Subject
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug().Err(err).Msg("websocket read error")
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued messages into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	if msg.Type == "ping" {
		c.send <- []byte(`{"type":"pong"}`)
	}
}
