// fiction.go
//
// A fanfiction reading tracker data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of fictiondb.
// fictiondb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// fictiondb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with fictiondb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/middleware"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/utils"
	"gorm.io/gorm"
)

// FictionHandler handles fiction routes
type FictionHandler struct {
	DB *gorm.DB
}

// ListFictions handles GET /api/fictions
// @Summary List all fictions
// @Description List every fiction of the user with fandom names and tags
// @Tags Fictions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions [get]
func (h *FictionHandler) ListFictions(c *fiber.Ctx) error {
	fictions, err := services.ListAll(c.UserContext(), h.DB, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "fiction.list")
	}
	return utils.SuccessResponse(c, fiber.Map{"fictions": fictions}, fiber.StatusOK)
}

// ListByStatus handles GET /api/fictions/status/:status?sort=&order=
// @Summary List fictions by reading status
// @Description Fictions in one reading status grouped under their fandoms in position order
// @Tags Fictions
// @Produce json
// @Security BearerAuth
// @Param status path string true "Reading status" Enums(to-read, reading, finished)
// @Param sort query string false "Sort field" Enums(title, author, numberOfWords, lastReadAt, createdAt, rate)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions/status/{status} [get]
func (h *FictionHandler) ListByStatus(c *fiber.Ctx) error {
	spec, err := services.ParseSort(c.Query("sort"), c.Query("order"))
	if err != nil {
		return respondError(c, err, "fiction.listByStatus")
	}

	fandoms, err := services.ListByStatus(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("status"), spec)
	if err != nil {
		return respondError(c, err, "fiction.listByStatus")
	}
	return utils.SuccessResponse(c, fiber.Map{"fandoms": fandoms}, fiber.StatusOK)
}

// ListAuthors handles GET /api/fictions/authors
// @Summary List authors
// @Description Distinct author names across the user's fictions
// @Tags Fictions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions/authors [get]
func (h *FictionHandler) ListAuthors(c *fiber.Ctx) error {
	authors, err := services.ListAuthors(c.UserContext(), h.DB, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "fiction.authors")
	}
	return utils.SuccessResponse(c, fiber.Map{"authors": authors}, fiber.StatusOK)
}

// GetFiction handles GET /api/fictions/:id
// @Summary Get a fiction
// @Tags Fictions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fiction ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions/{id} [get]
func (h *FictionHandler) GetFiction(c *fiber.Ctx) error {
	fiction, err := services.GetFiction(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "fiction.get")
	}
	return utils.SuccessResponse(c, fiber.Map{"fiction": fiction}, fiber.StatusOK)
}

// CreateFiction handles POST /api/fictions
// @Summary Create a fiction
// @Description Create a fiction. The fandom is resolved by name, tags may be given as ids or names.
// @Tags Fictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.FictionInput true "Fiction"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions [post]
func (h *FictionHandler) CreateFiction(c *fiber.Ctx) error {
	var body services.FictionInput
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "fiction.create")
	}

	fiction, err := services.CreateFiction(c.UserContext(), h.DB, middleware.CurrentUserID(c), body)
	if err != nil {
		return respondError(c, err, "fiction.create")
	}
	return utils.SuccessResponse(c, fiber.Map{"message": "Fiction created", "fiction": fiction}, fiber.StatusCreated)
}

// UpdateFiction handles PATCH /api/fictions/:id
// @Summary Update a fiction
// @Description Update the given fields of a fiction. A tags or tagNames key replaces the tag set.
// @Tags Fictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fiction ID"
// @Param body body services.FictionPatch true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions/{id} [patch]
func (h *FictionHandler) UpdateFiction(c *fiber.Ctx) error {
	var body services.FictionPatch
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, "fiction.update")
	}

	fiction, err := services.UpdateFiction(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id"), body)
	if err != nil {
		return respondError(c, err, "fiction.update")
	}
	return utils.MutationSuccessResponse(c, "Fiction updated", fiber.Map{"fiction": fiction})
}

// DeleteFiction handles DELETE /api/fictions/:id
// @Summary Delete a fiction
// @Description Delete a fiction, its tag link record, and release its tag usage
// @Tags Fictions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fiction ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fictions/{id} [delete]
func (h *FictionHandler) DeleteFiction(c *fiber.Ctx) error {
	if err := services.DeleteFiction(c.UserContext(), h.DB, middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return respondError(c, err, "fiction.delete")
	}
	return utils.MutationSuccessResponse(c, "Fiction deleted", nil)
}
