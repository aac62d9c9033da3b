package serverutils

import (
	"errors"

	"magic-diary-be/pkg/diary"

	"github.com/gofiber/fiber/v2"
)

// ErrNotFound is returned by services for unknown resources.
var ErrNotFound = errors.New("resource not found")

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message, details := classify(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message, details...))
	}
}

func classify(err error) (int, string, []string) {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, "Invalid request", validationErr.Fields
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message, nil
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error(), nil
	case errors.Is(err, diary.ErrBusy):
		return fiber.StatusConflict, err.Error(), nil
	case errors.Is(err, diary.ErrEmptyText):
		return fiber.StatusBadRequest, err.Error(), nil
	default:
		return fiber.StatusInternalServerError, "Internal server error", nil
	}
}
