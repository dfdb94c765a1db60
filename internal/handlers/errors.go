package handlers

import (
	"errors"
	"log"

	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse is the single boundary translator from the service error
// taxonomy to HTTP statuses. Anything unrecognized is an internal error.
func errorResponse(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.Is(err, services.ErrDuplicateIdentity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username or email already registered",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Only the author may modify this post",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
		})
	default:
		log.Printf("Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
