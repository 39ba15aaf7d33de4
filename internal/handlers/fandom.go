package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/middleware"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// FandomHandler handles fandom and language routes
type FandomHandler struct {
	DB *gorm.DB
}

// ListFandoms handles GET /api/fandoms
// @Summary List fandoms
// @Description List the user's fandoms in position order
// @Tags Fandoms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fandoms [get]
func (h *FandomHandler) ListFandoms(c *fiber.Ctx) error {
	fandoms, err := services.ListFandoms(c.UserContext(), h.DB, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "fandom.list")
	}
	return utils.SuccessResponse(c, fiber.Map{"fandoms": fandoms}, fiber.StatusOK)
}

// CreateFandom handles POST /api/fandoms
// @Summary Create a fandom
// @Description Resolve a fandom by name, creating it at the next position when it does not exist
// @Tags Fandoms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "Fandom name"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fandoms [post]
func (h *FandomHandler) CreateFandom(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "fandom.create")
	}

	fandom, err := services.CreateFandom(c.UserContext(), h.DB, middleware.CurrentUserID(c), body.Name)
	if err != nil {
		return respondError(c, err, "fandom.create")
	}

	status := fiber.StatusOK
	if fandom.Created {
		status = fiber.StatusCreated
	}
	return utils.SuccessResponse(c, fiber.Map{"fandom": fandom}, status)
}

// FandomUsageCount handles GET /api/fandoms/:id/usage-count
// @Summary Fandom usage count
// @Description Count the fictions that reference a fandom
// @Tags Fandoms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fandom ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fandoms/{id}/usage-count [get]
func (h *FandomHandler) FandomUsageCount(c *fiber.Ctx) error {
	usage, err := services.FandomUsage(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "fandom.usage")
	}
	return utils.SuccessResponse(c, fiber.Map{
		"id":         usage.ID,
		"name":       usage.Name,
		"usageCount": usage.UsageCount,
	}, fiber.StatusOK)
}

// DeleteFandom handles DELETE /api/fandoms/:id?detach=&force=
// @Summary Delete a fandom
// @Description Delete a fandom. A fandom still used by fictions answers 409 unless detach or force is set.
// @Tags Fandoms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fandom ID"
// @Param detach query bool false "Unset the fandom on its fictions first"
// @Param force query bool false "Delete even when in use"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fandoms/{id} [delete]
func (h *FandomHandler) DeleteFandom(c *fiber.Ctx) error {
	outcome, err := services.DeleteFandom(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id"), parseDeleteOptions(c))
	if err != nil {
		return respondError(c, err, "fandom.delete")
	}
	return respondDeleteOutcome(c, "fandom", outcome)
}

// ListLanguages handles GET /api/languages
// @Summary List languages
// @Description List the distinct languages used on the user's fictions
// @Tags Fandoms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /languages [get]
func (h *FandomHandler) ListLanguages(c *fiber.Ctx) error {
	languages, err := services.ListLanguages(c.UserContext(), h.DB, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "language.list")
	}
	return utils.SuccessResponse(c, fiber.Map{"languages": languages}, fiber.StatusOK)
}
