package validation

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const bodyKey = "validatedBody"

// Body decodes the JSON body into T and validates it. On success the decoded
// value is stored on the request and the chain continues; otherwise a 400 is
// written listing every violated field.
func Body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}

		fields, err := Struct(req)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		if len(fields) > 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewFieldValidationError(fields))
		}

		c.Locals(bodyKey, req)
		return c.Next()
	}
}

// From returns the body stored by Body[T]. ok is false when no body of that
// type was validated for this request.
func From[T any](c *fiber.Ctx) (*T, bool) {
	req, ok := c.Locals(bodyKey).(*T)
	return req, ok
}
