package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/middleware"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// TagHandler handles tag routes
type TagHandler struct {
	DB *gorm.DB
}

// ListTags handles GET /api/tags
// @Summary List tags
// @Description List the user's tags, most used first
// @Tags Tags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tags [get]
func (h *TagHandler) ListTags(c *fiber.Ctx) error {
	tags, err := services.ListTags(c.UserContext(), h.DB, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "tag.list")
	}
	return utils.SuccessResponse(c, fiber.Map{"tags": tags}, fiber.StatusOK)
}

// CreateTag handles POST /api/tags
// @Summary Create a tag
// @Description Create a tag that is not yet attached to any fiction. An existing name returns the stored tag.
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.TagInput true "Tag"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tags [post]
func (h *TagHandler) CreateTag(c *fiber.Ctx) error {
	var body services.TagInput
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "tag.create")
	}

	tag, created, err := services.CreateTag(c.UserContext(), h.DB, middleware.CurrentUserID(c), body)
	if err != nil {
		return respondError(c, err, "tag.create")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.SuccessResponse(c, fiber.Map{"tag": tag, "created": created}, status)
}

// TagUsageCount handles GET /api/tags/:id/usage-count
// @Summary Tag usage count
// @Description Count the fictions whose link record holds the tag
// @Tags Tags
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tags/{id}/usage-count [get]
func (h *TagHandler) TagUsageCount(c *fiber.Ctx) error {
	usage, err := services.TagUsage(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "tag.usage")
	}
	return utils.SuccessResponse(c, fiber.Map{
		"id":         usage.ID,
		"name":       usage.Name,
		"usageCount": usage.UsageCount,
	}, fiber.StatusOK)
}

// DeleteTag handles DELETE /api/tags/:id?detach=&force=
// @Summary Delete a tag
// @Description Delete a tag. A tag still attached to fictions answers 409 unless detach or force is set.
// @Tags Tags
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Param detach query bool false "Remove the tag from every fiction first"
// @Param force query bool false "Delete even when in use"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *fiber.Ctx) error {
	outcome, err := services.DeleteTag(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id"), parseDeleteOptions(c))
	if err != nil {
		return respondError(c, err, "tag.delete")
	}
	return respondDeleteOutcome(c, "tag", outcome)
}
