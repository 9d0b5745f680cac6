package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Success    bool   `json:"success"`
	Details    string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes the error envelope. Internal causes are never echoed to clients.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{
		StatusCode: status,
		Message:    err.Error(),
		Success:    false,
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		response.Message = appErr.Message
		response.Code = appErr.Code
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else if status >= fiber.StatusInternalServerError {
		response.Message = "Internal server error"
		response.Code = CodeInternal
	}

	return c.Status(status).JSON(response)
}
