package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// SystemHandler handles the unauthenticated catalog and health routes
type SystemHandler struct {
	Config *config.Config
	DB     *gorm.DB
}

// ListThemes handles GET /api/themes
// @Summary List themes
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /themes [get]
func (h *SystemHandler) ListThemes(c *fiber.Ctx) error {
	themes, err := services.ListThemes(c.UserContext(), h.DB)
	if err != nil {
		return respondError(c, err, "theme.list")
	}
	return utils.SuccessResponse(c, fiber.Map{"themes": themes}, fiber.StatusOK)
}

// Health handles GET /api/health
// @Summary Service health
// @Tags System
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB)
	if result.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
