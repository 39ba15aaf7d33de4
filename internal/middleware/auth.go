package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/types"
)

// Locals keys set by AuthUser
const (
	LocalUser   = "user"
	LocalUserID = "userID"
)

// AuthUser requires an "Authorization: Bearer <token>" header naming a known user
func AuthUser(auth services.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Missing token",
				Type:    "auth.missing_token",
			}
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			var svcErr *services.Error
			if errors.As(err, &svcErr) && svcErr.Kind == services.KindUnauthorized {
				return &types.CustomError{
					Code:    fiber.StatusUnauthorized,
					Message: svcErr.Message,
					Type:    "auth.invalid_token",
				}
			}
			slog.ErrorContext(c.UserContext(), "authentication failed", "error", err)
			return &types.CustomError{
				Code:    fiber.StatusInternalServerError,
				Message: "Server authentication error",
				Type:    "auth.error",
			}
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthUser, nil on unauthenticated routes
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}

// CurrentUserID returns the id stored by AuthUser, empty on unauthenticated routes
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
