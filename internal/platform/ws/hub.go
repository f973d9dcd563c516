// Package ws pushes in-app notifications to connected browsers over
// WebSockets. Each connection is keyed by the authenticated user id, and
// events published for that user are fanned out to all of their open
// connections.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/mediland/clinic/internal/platform/auth"
)

// Event is a real-time notification pushed to a user's open connections.
type Event struct {
	Type      string          `json:"type"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Publisher defines the interface for pushing events to connected users.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Client represents a single WebSocket connection for one user.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// Hub tracks connected clients by user id. All operations are thread-safe.
type Hub struct {
	mu      sync.RWMutex
	byUser  map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		byUser:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a client to the hub under its user id.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	if h.byUser[client.UserID] == nil {
		h.byUser[client.UserID] = make(map[*Client]struct{})
	}
	h.byUser[client.UserID][client] = struct{}{}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	if conns, ok := h.byUser[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	delete(h.clients, client)
	close(client.Send)
}

// Publish implements Publisher by sending the event to every open connection
// belonging to the event's user.
func (h *Hub) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.byUser[event.UserID] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
	return nil
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserConnCount returns the number of open connections for a user.
func (h *Hub) UserConnCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// TokenVerifier validates a query-string token and returns the user id it
// was issued to.
type TokenVerifier func(token string) (string, error)

// Handler handles HTTP-to-WebSocket upgrades and connection pumps.
type Handler struct {
	hub    *Hub
	verify TokenVerifier
}

// NewHandler builds the upgrade handler. verify may be nil in development,
// in which case the user query parameter is trusted as-is.
func NewHandler(hub *Hub, verify TokenVerifier) *Handler {
	return &Handler{hub: hub, verify: verify}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket and registers the
// connection under the caller's user id.
func (h *Handler) HandleConnect(c echo.Context) error {
	userID, err := h.resolveUser(c)
	if err != nil {
		return err
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	log.Debug().Str("user_id", userID).Str("client_id", client.ID).Msg("websocket client connected")

	go h.writePump(client, ws)
	go h.readPump(client, ws)

	return nil
}

// resolveUser decides which user the connection belongs to. The auth context
// wins when the request came through the middleware chain; otherwise the
// caller must present a token query parameter, since a browser upgrade
// request cannot carry an Authorization header. The token is validated with
// the configured verifier; the bare user parameter is only honored when no
// verifier is configured (development), so an anonymous caller can never
// subscribe to someone else's notifications in production.
func (h *Handler) resolveUser(c echo.Context) (string, error) {
	if userID := auth.UserIDFromContext(c.Request().Context()); userID != "" {
		return userID, nil
	}

	if h.verify != nil {
		token := c.QueryParam("token")
		if token == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "token is required")
		}
		userID, err := h.verify(token)
		if err != nil || userID == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return userID, nil
	}

	userID := c.QueryParam("user")
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "user is required")
	}
	return userID, nil
}

// readPump drains inbound messages until the connection drops, then cleans up.
func (h *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		h.hub.Unregister(client)
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages from the Send channel to the connection.
func (h *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range client.Send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}
