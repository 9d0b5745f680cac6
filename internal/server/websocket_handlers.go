package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades authenticated requests and registers the socket with the hub.
// Authentication is handled by route middleware and userID is read from connection locals.
// @Summary Notification socket
// @Description Server-push websocket carrying notification events as JSON.
// @Tags realtime
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "user_id", userID, "error", err)
			if frame, encErr := notifications.EncodeEvent(notifications.EventError, fiber.Map{"message": err.Error()}); encErr == nil {
				_ = conn.WriteMessage(websocket.TextMessage, frame)
			}
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("Websocket upgrade required"))
		}
		return upgrade(c)
	}
}
