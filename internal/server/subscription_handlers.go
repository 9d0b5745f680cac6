package server

import (
	"vidtube/internal/models"
	"vidtube/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// ToggleSubscription subscribes to or unsubscribes from a channel
// @Summary Toggle subscription
// @Tags subscriptions
// @Produce json
// @Param channelId path string true "Channel (user) id"
// @Success 200 {object} models.APIResponse{data=object{subscribed=bool}}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/c/{channelId} [post]
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	channelID := c.Params("channelId")
	userID := requesterID(c)

	subscribed, err := s.subscriptionService.Toggle(c.UserContext(), channelID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	if subscribed {
		s.notifyOwner(c.UserContext(), channelID, userID, notifications.EventNewSubscriber, map[string]any{
			"subscriberId": userID,
		})
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"subscribed": subscribed}, "Subscription toggled successfully")
}

// GetChannelSubscribers lists a channel's subscribers, newest first
// @Summary Channel subscribers
// @Tags subscriptions
// @Produce json
// @Param channelId path string true "Channel (user) id"
// @Success 200 {object} models.APIResponse{data=[]models.Subscriber}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/c/{channelId} [get]
func (s *Server) GetChannelSubscribers(c *fiber.Ctx) error {
	subscribers, err := s.subscriptionService.Subscribers(c.UserContext(), c.Params("channelId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, subscribers, "Subscribers fetched successfully")
}

// GetSubscribedChannels lists the channels a user follows with their latest video
// @Summary Subscribed channels
// @Tags subscriptions
// @Produce json
// @Param subscriberId path string true "Subscriber (user) id"
// @Success 200 {object} models.APIResponse{data=[]models.SubscribedChannel}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/u/{subscriberId} [get]
func (s *Server) GetSubscribedChannels(c *fiber.Ctx) error {
	channels, err := s.subscriptionService.SubscribedChannels(c.UserContext(), c.Params("subscriberId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, channels, "Subscribed channels fetched successfully")
}
