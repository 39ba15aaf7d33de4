package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/types"
)

// CurrentAPIVersion is assumed when a request sends no X-Api-Version
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, rejects unsupported major versions,
// stores the normalized version in context and echoes it back
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := strings.TrimPrefix(strings.TrimSpace(c.Get("X-Api-Version", CurrentAPIVersion)), "v")

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = CurrentAPIVersion
		}

		if major, _, _ := strings.Cut(version, "."); major != "1" {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "Unsupported API version: " + version,
				Type:    "version",
			}
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}
