package notifications

import (
	"context"
	"errors"
	"sync"

	"vidtube/internal/middleware"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps userID to that user's open sockets on this instance.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	presence   *Presence
}

// NewHub creates a Hub. The optional Redis client backs cross-instance presence.
func NewHub(redisClients ...*redis.Client) *Hub {
	var rdb *redis.Client
	if len(redisClients) > 0 {
		rdb = redisClients[0]
	}
	return &Hub{
		conns:    make(map[string]map[*Client]struct{}),
		presence: NewPresence(rdb),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register adds a connection for userID. It fails when a connection limit is reached.
func (h *Hub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, ErrUserFull
	}

	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid string) {
		h.presence.Touch(context.Background(), uid)
	}
	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	middleware.ActiveWebSockets.Inc()
	h.presence.Register(context.Background(), userID)
	return client, nil
}

func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
			client.closeSend()
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		middleware.ActiveWebSockets.Dec()
		h.presence.Unregister(client.UserID)
	}
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether the user has a live socket on any instance.
func (h *Hub) IsOnline(ctx context.Context, userID string) bool {
	return h.presence.IsOnline(ctx, userID)
}

// StartWiring subscribes the hub to the Notifier's Redis channels and forwards each
// message to the matching local connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		userID, ok := userFromChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown closes every socket with a going-away frame.
func (h *Hub) Shutdown(_ context.Context) error {
	h.presence.Stop()

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				middleware.Logger.Warn("failed to write close message", "user_id", userID, "error", err)
			}
			_ = client.Conn.Close()
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()
	return nil
}
