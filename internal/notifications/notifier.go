// Package notifications delivers realtime events to connected users over websockets,
// fanned out across instances through Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"vidtube/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	broadcastChannel  = "notifications:broadcast"
)

// Event types published to users.
const (
	EventVideoPublished = "video_published"
	EventNewSubscriber  = "new_subscriber"
	EventVideoLiked     = "video_liked"
	EventCommentAdded   = "comment_added"
	EventTweetLiked     = "tweet_liked"
	EventCommentLiked   = "comment_liked"
	EventError          = "error"
)

// Event is the JSON envelope written to websocket clients.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// EncodeEvent builds the JSON frame for an event of eventType.
func EncodeEvent(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, CreatedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a raw payload to a user's channel. A nil client is a no-op.
func (n *Notifier) PublishUser(ctx context.Context, userID, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishEvent encodes an Event and publishes it to userID.
func (n *Notifier) PublishEvent(ctx context.Context, userID, eventType string, payload any) error {
	data, err := EncodeEvent(eventType, payload)
	if err != nil {
		return err
	}
	return n.PublishUser(ctx, userID, string(data))
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to every user channel and the broadcast channel and
// calls onMessage for each message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// userFromChannel extracts the user id from a user channel name.
func userFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
