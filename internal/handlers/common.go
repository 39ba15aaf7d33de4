// common.go
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
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fictiondb/internal/services"
	"github.com/localnerve/fictiondb/internal/types"
	"github.com/localnerve/fictiondb/internal/utils"
)

const internalErrorMessage = "Internal server error"

// respondError maps a service error onto the response envelope.
// Internal failures are logged and answered with a generic message.
func respondError(c *fiber.Ctx, err error, op string) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == services.KindInternal {
		slog.ErrorContext(c.UserContext(), "request failed", "op", op, "url", c.OriginalURL(), "error", err)
		return utils.ErrorResponse(c, internalErrorMessage, fiber.StatusInternalServerError, op)
	}

	errorType := op + "." + string(svcErr.Kind)
	if len(svcErr.Details) > 0 {
		return utils.ErrorResponseWithFields(c, svcErr.Message, svcErr.Kind.HTTPStatus(), errorType, fiber.Map{
			"details": svcErr.Details,
		})
	}
	return utils.ErrorResponse(c, svcErr.Message, svcErr.Kind.HTTPStatus(), errorType)
}

// invalidBody answers a request whose body could not be parsed
func invalidBody(c *fiber.Ctx, op string) error {
	return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, op+".validation")
}

// parseDeleteOptions reads the detach and force query flags of a guarded delete
func parseDeleteOptions(c *fiber.Ctx) services.DeleteOptions {
	return services.DeleteOptions{
		Detach: c.QueryBool("detach"),
		Force:  c.QueryBool("force"),
	}
}

// respondDeleteOutcome writes either the confirmation response or the deletion result
func respondDeleteOutcome(c *fiber.Ctx, kind string, outcome services.DeleteOutcome) error {
	if outcome.RequiresConfirmation {
		return utils.ConfirmationRequiredResponse(c,
			"This "+kind+" is used by other records, confirm with detach or force",
			outcome.Name, outcome.UsageCount)
	}
	return utils.MutationSuccessResponse(c, "Deleted "+kind+" "+outcome.Name, fiber.Map{
		"deleted":           outcome.Deleted,
		"name":              outcome.Name,
		"usageCount":        outcome.UsageCount,
		"wasDetached":       outcome.WasDetached,
		"detachedFromCount": outcome.DetachedFromCount,
	})
}

// ErrorHandler handles errors that escape route handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.ErrorResponse(c, fiberErr.Message, fiberErr.Code, "unknown")
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return respondError(c, err, "request")
	}

	slog.ErrorContext(c.UserContext(), "unhandled error", "url", c.OriginalURL(), "error", err)
	return utils.ErrorResponse(c, internalErrorMessage, fiber.StatusInternalServerError, "unknown")
}

// NotFound is the fallback for unmatched routes
func NotFound(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, "not_found")
}
