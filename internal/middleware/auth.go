// Package middleware provides authentication, logging, metrics, tracing and rate limiting
// middleware for the HTTP server.
package middleware

import (
	"context"
	"strings"

	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AccessTokenCookie is the cookie carrying the access token for browser clients.
const AccessTokenCookie = "accessToken"

// TokenVerifier validates an access token and returns the user id it was issued to.
type TokenVerifier func(ctx context.Context, token string) (string, error)

// ExtractToken returns the bearer token from the Authorization header, falling back to
// the access token cookie.
func ExtractToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(AccessTokenCookie)
}

// AuthRequired rejects requests without a valid access token and stores the user id in
// c.Locals("userID").
func AuthRequired(verify TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized request"))
		}

		userID, err := verify(c.UserContext(), token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired access token"))
		}

		setUser(c, userID)
		return c.Next()
	}
}

// OptionalAuth identifies the requester when a valid token is present and otherwise lets
// the request through anonymously.
func OptionalAuth(verify TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := ExtractToken(c); token != "" {
			if userID, err := verify(c.UserContext(), token); err == nil {
				setUser(c, userID)
			}
		}
		return c.Next()
	}
}

func setUser(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}
