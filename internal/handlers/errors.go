package handlers

import (
	"errors"

	"recipebox/internal/access"
	"recipebox/internal/repositories"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError writes the client-facing response for a known domain error.
// Unknown errors are returned unchanged for the app's ErrorHandler to turn into a 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  verr.Fields,
		})
	}

	var dup *repositories.DuplicateError
	if errors.As(err, &dup) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": dup.Error(),
			"field":   dup.Field,
		})
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	case errors.Is(err, access.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized to modify this recipe",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Recipe not found",
		})
	}
	return err
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}
