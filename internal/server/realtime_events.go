package server

import (
	"context"

	"vidtube/internal/middleware"
	"vidtube/internal/notifications"
)

// publishUserEvent delivers an event to userID when they have a live socket. With Redis the
// event goes through pub/sub so any instance holding the socket delivers it; without Redis
// the local hub delivers directly.
func (s *Server) publishUserEvent(ctx context.Context, userID, eventType string, payload any) {
	if s.hub == nil || userID == "" {
		return
	}
	if !s.hub.IsOnline(ctx, userID) {
		return
	}

	if s.notifier != nil {
		if err := s.notifier.PublishEvent(ctx, userID, eventType, payload); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish event",
				"event", eventType, "user_id", userID, "error", err)
		}
		return
	}

	data, err := notifications.EncodeEvent(eventType, payload)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to marshal event", "event", eventType, "error", err)
		return
	}
	s.hub.Broadcast(userID, string(data))
}

// notifyOwner tells ownerID about an action by actorID on their content. Self-actions
// are not reported.
func (s *Server) notifyOwner(ctx context.Context, ownerID, actorID, eventType string, payload map[string]any) {
	if ownerID == "" || ownerID == actorID {
		return
	}
	payload["actorId"] = actorID
	s.publishUserEvent(ctx, ownerID, eventType, payload)
}

// notifySubscribers fans an event out to the channel's subscribers that are online.
func (s *Server) notifySubscribers(ctx context.Context, channelID, eventType string, payload any) {
	subscribers, err := s.subscriptionService.Subscribers(ctx, channelID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load subscribers for event",
			"event", eventType, "channel_id", channelID, "error", err)
		return
	}
	for _, sub := range subscribers {
		s.publishUserEvent(ctx, sub.ID, eventType, payload)
	}
}
