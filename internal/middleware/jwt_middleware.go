package middleware

import (
	"log/slog"
	"strings"

	"recipebox/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUserID   = "user_id"
	localsUsername = "username"
)

// TokenVerifier validates a bearer token. *services.AuthService satisfies it.
type TokenVerifier interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// Missing, malformed, expired and forged tokens all yield the same 401 body.
func AuthRequired(verifier TokenVerifier, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		claims, err := verifier.ValidateToken(tokenString)
		if err != nil {
			logger.DebugContext(c.UserContext(), "jwt validation failed",
				slog.String("path", c.Path()), slog.String("error", err.Error()))
			return unauthorized(c)
		}

		identity := auth.Identity{UserID: claims.UserID(), Username: claims.Username}
		c.Locals(localsUserID, identity.UserID)
		c.Locals(localsUsername, identity.Username)
		c.SetUserContext(auth.ContextWithIdentity(c.UserContext(), identity))

		return c.Next()
	}
}

// IdentityFrom returns the identity AuthRequired attached to the request.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	return auth.IdentityFromContext(c.UserContext())
}

// Expected format: "Bearer <token>"
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid credentials",
	})
}
