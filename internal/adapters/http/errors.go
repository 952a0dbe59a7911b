package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/medispecs/medispecs-api/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: validation_error, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "validation_error", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errStore returns a 500 error for storage failures.
func errStore(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "store_error", msg)
}

// errUpstream returns a 502 error for external collaborator failures.
func errUpstream(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "face_service_error", msg)
}

// serviceError maps domain error kinds onto HTTP responses. Handlers call it
// for any error coming out of a usecase.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidation(err):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "resource not found")
	case domain.IsUpstream(err):
		return errUpstream(c, err.Error())
	default:
		return errStore(c, err.Error())
	}
}
