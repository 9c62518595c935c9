package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier parses an access token into its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthRequired enforces a bearer token on protected routes. A missing or
// malformed Authorization header is 401; a token that fails verification is 403.
func AuthRequired(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			observability.RecordAuthEvent("token", "missing")
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			observability.RecordAuthEvent("token", "missing")
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			outcome := "invalid"
			if errors.Is(err, auth.ErrExpiredToken) {
				outcome = "expired"
			}
			observability.RecordAuthEvent("token", outcome)
			Logger.DebugContext(c.UserContext(), "token rejected", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Invalid or expired token"))
		}

		c.Locals("userID", claims.ID)
		c.Locals("userEmail", claims.Email)
		c.Locals("claims", claims)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.ID))

		return c.Next()
	}
}

// UserID returns the authenticated user's id set by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}
