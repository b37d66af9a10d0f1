// Package realtime is the push channel: one websocket per rider or captain
// app, addressed by a session id that the app binds to its identity with a
// join frame.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ridehail/internal/auth"
	"ridehail/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
	bindTimeout    = 5 * time.Second
)

// Inbound and acknowledgement frame names.
const (
	FrameJoin           = "join"
	FrameJoined         = "joined"
	FrameUpdateLocation = "update-location-captain"
	FrameError          = "error"
)

const userTypeCaptain = "captain"

var (
	// ErrSessionNotFound is returned by Send when no socket has that session id.
	ErrSessionNotFound = errors.New("session not connected")

	// ErrSlowClient is returned by Send when the session's outbound buffer is full.
	ErrSlowClient = errors.New("session send buffer full")
)

// SessionBinder records which rider or captain owns a session.
type SessionBinder interface {
	Bind(ctx context.Context, userType, userID, sessionID string) error
}

// LocationUpdater stores a captain position reported over the socket.
type LocationUpdater interface {
	UpdateLocation(ctx context.Context, captainID string, at domain.Coordinate) error
}

// Frame is the envelope for every message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinData struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

type locationData struct {
	UserID   string            `json:"userId"`
	Location domain.Coordinate `json:"location"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks live sockets by session id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	binder    SessionBinder
	locations LocationUpdater
	log       *slog.Logger
}

// NewHub creates a new Hub. locations may be nil, in which case location
// frames are answered with an error frame.
func NewHub(binder SessionBinder, locations LocationUpdater, log *slog.Logger) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		binder:    binder,
		locations: locations,
		log:       log.With("component", "realtime"),
	}
}

// ServeWS upgrades the request and serves the socket until it closes. The
// request must carry an authenticated identity; a join may only bind that
// identity.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:       uuid.New().String(),
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		identity: identity,
	}
	h.register(client)

	go client.writePump()
	client.readPump()
}

// Send pushes an event to one session. It never blocks: a missing session or
// a full buffer is reported and the event is dropped.
func (h *Hub) Send(sessionID, event string, payload any) error {
	msg, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	select {
	case client.send <- msg:
		return nil
	default:
		return ErrSlowClient
	}
}

// Connected reports how many sockets are open.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every socket.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Debug("socket connected", "session_id", c.id)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	h.log.Debug("socket disconnected", "session_id", c.id, "user_id", c.userID)
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// Client is one connected socket.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// Token holder; join may only bind this subject and role.
	identity auth.Identity

	// Set by a successful join; only touched by the read goroutine.
	userID   string
	userType string
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
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
				c.hub.log.Info("socket closed unexpectedly", "session_id", c.id, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reply(FrameError, errorData("malformed frame"))
			continue
		}
		c.handle(frame)
	}
}

func (c *Client) handle(frame Frame) {
	ctx, cancel := context.WithTimeout(context.Background(), bindTimeout)
	defer cancel()

	switch frame.Event {
	case FrameJoin:
		var data joinData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.UserID == "" {
			c.reply(FrameError, errorData("join requires userId and userType"))
			return
		}
		if data.UserID != c.identity.Subject || data.UserType != c.identity.Role {
			c.hub.log.Warn("join for another identity rejected",
				"session_id", c.id, "subject", c.identity.Subject, "user_id", data.UserID, "user_type", data.UserType)
			c.reply(FrameError, errorData("join does not match the authenticated user"))
			return
		}
		if err := c.hub.binder.Bind(ctx, data.UserType, data.UserID, c.id); err != nil {
			c.hub.log.Info("join rejected", "session_id", c.id, "user_id", data.UserID, "error", err)
			c.reply(FrameError, errorData(err.Error()))
			return
		}
		c.userID, c.userType = data.UserID, data.UserType
		c.reply(FrameJoined, map[string]string{"socketId": c.id})

	case FrameUpdateLocation:
		var data locationData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			c.reply(FrameError, errorData("invalid location frame"))
			return
		}
		if c.userType != userTypeCaptain || (data.UserID != "" && data.UserID != c.userID) {
			c.reply(FrameError, errorData("join as this captain before sending locations"))
			return
		}
		if c.hub.locations == nil {
			c.reply(FrameError, errorData("location updates not supported"))
			return
		}
		if err := c.hub.locations.UpdateLocation(ctx, c.userID, data.Location); err != nil {
			c.hub.log.Info("location update rejected", "captain_id", c.userID, "error", err)
			c.reply(FrameError, errorData(err.Error()))
		}

	default:
		c.reply(FrameError, errorData("unknown event "+frame.Event))
	}
}

// reply queues a frame to this socket; dropped if the buffer is full.
func (c *Client) reply(event string, payload any) {
	msg, err := encodeFrame(event, payload)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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

func errorData(msg string) map[string]string {
	return map[string]string{"message": msg}
}
