package server

import (
	"errors"
	"log/slog"

	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an AppError code to its HTTP status. Anything else is a 500.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// mapServiceError writes the error envelope for a service-layer error.
func mapServiceError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// errorHandler converts errors that escape handlers, including fiber's own routing and
// body-limit errors, into the error envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := models.CodeInternal
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
			code = models.CodeValidation
		}
		return models.RespondWithError(c, fiberErr.Code,
			&models.AppError{Code: code, Message: fiberErr.Message})
	}
	return mapServiceError(c, err)
}
