package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"vidtube/internal/notifications"
	"vidtube/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// nextEvent waits for the next message queued for client.
func nextEvent(t *testing.T, client *notifications.Client) receivedEvent {
	t.Helper()
	var got receivedEvent
	require.Eventually(t, func() bool {
		select {
		case msg := <-client.Send:
			require.NoError(t, json.Unmarshal(msg, &got))
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
	return got
}

func TestRealtime_LocalDeliveryWithoutRedis(t *testing.T) {
	env := newTestEnv(t, false)
	channel, _ := env.signup(t, "streamer")
	fan, fanToken := env.signup(t, "viewer")

	client, err := env.srv.hub.Register(channel.ID, nil)
	require.NoError(t, err)

	resp, _ := env.request(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, fanToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	event := nextEvent(t, client)
	assert.Equal(t, notifications.EventNewSubscriber, event.Type)
	assert.Equal(t, fan.ID, event.Payload["subscriberId"])
}

func TestRealtime_FanOutThroughRedis(t *testing.T) {
	env := newTestEnv(t, true)
	channel, channelToken := env.signup(t, "creator")
	fan, fanToken := env.signup(t, "audience")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, env.srv.hub.StartWiring(ctx, env.srv.notifier))

	creatorConn, err := env.srv.hub.Register(channel.ID, nil)
	require.NoError(t, err)
	fanConn, err := env.srv.hub.Register(fan.ID, nil)
	require.NoError(t, err)

	resp, _ := env.request(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, fanToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, notifications.EventNewSubscriber, nextEvent(t, creatorConn).Type)

	video := env.publish(t, channelToken, "premiere")
	published := nextEvent(t, fanConn)
	assert.Equal(t, notifications.EventVideoPublished, published.Type)
	assert.Equal(t, video.ID, published.Payload["videoId"])

	// Liking your own video is not reported; the fan's like is.
	resp, _ = env.request(t, http.MethodPost, "/api/v1/likes/toggle/v/"+video.ID, channelToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = env.request(t, http.MethodPost, "/api/v1/likes/toggle/v/"+video.ID, fanToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	liked := nextEvent(t, creatorConn)
	assert.Equal(t, notifications.EventVideoLiked, liked.Type)
	assert.Equal(t, fan.ID, liked.Payload["actorId"])

	resp, _ = env.request(t, http.MethodPost, "/api/v1/comments/"+video.ID, fanToken, fiber.Map{"content": "great"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, notifications.EventCommentAdded, nextEvent(t, creatorConn).Type)
}

func TestRealtime_OfflineUsersAreSkipped(t *testing.T) {
	env := newTestEnv(t, true)
	owner, _ := env.signup(t, "absent")
	_, fanToken := env.signup(t, "present")
	video := testutil.SeedVideo(t, env.db, owner.ID, "quiet", true, 0)

	pubsub := env.mr.NewSubscriber()
	defer pubsub.Close()
	pubsub.Subscribe(notifications.UserChannel(owner.ID))

	resp, _ := env.request(t, http.MethodPost, "/api/v1/likes/toggle/v/"+video.ID, fanToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	select {
	case msg := <-pubsub.Messages():
		t.Fatalf("unexpected publish to offline user: %s", msg.Message)
	default:
	}
}
