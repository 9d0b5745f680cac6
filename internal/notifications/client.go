package notifications

import (
	"sync"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBuffer     = 256
)

// WSHub is implemented by hubs that own clients.
type WSHub interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client is a middleman between one websocket connection and its hub.
type Client struct {
	Hub    WSHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string

	// OnActivity runs whenever the peer sends a frame or answers a ping.
	OnActivity func(userID string)

	closeOnce sync.Once
}

// NewClient creates a new Client instance
func NewClient(hub WSHub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *Client) touch() {
	if c.OnActivity != nil {
		c.OnActivity(c.UserID)
	}
}

// ReadPump drains inbound frames so pings and closes are processed. Notification sockets
// are server-push only, so payloads are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("websocket read failed", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.touch()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. Full buffers drop the message and queue a
// notice so the client can re-fetch.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues("full").Inc()
		middleware.Logger.Warn("websocket buffer full, dropped message", "user_id", c.UserID, "hub", c.Hub.Name())

		dropNotice := []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)
		select {
		case c.Send <- dropNotice:
		default:
		}
	}
}
