package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends a standard success envelope: ok, timestamp and the payload keys
func SuccessResponse(c *fiber.Ctx, payload fiber.Map, status int) error {
	body := fiber.Map{
		"ok":        true,
		"timestamp": timestamp(),
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// ErrorResponse sends a standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return ErrorResponseWithFields(c, message, status, errorType, nil)
}

// ErrorResponseWithFields sends a standard error envelope with extra keys, such as validation details
func ErrorResponseWithFields(c *fiber.Ctx, message string, status int, errorType string, fields fiber.Map) error {
	body := fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": timestamp(),
		"url":       c.OriginalURL(),
		"type":      errorType,
	}
	for k, v := range fields {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// ConfirmationRequiredResponse sends the 409 returned when a delete needs detach or force
func ConfirmationRequiredResponse(c *fiber.Ctx, message, name string, usageCount int64) error {
	return ErrorResponseWithFields(c, message, fiber.StatusConflict, "confirmation", fiber.Map{
		"name":                 name,
		"usageCount":           usageCount,
		"requiresConfirmation": true,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "not_found")
}

// MutationSuccessResponse sends a success response for mutations (POST/PATCH/DELETE)
func MutationSuccessResponse(c *fiber.Ctx, message string, payload fiber.Map) error {
	body := fiber.Map{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	return SuccessResponse(c, body, fiber.StatusOK)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status               int               `json:"status"`
	Message              string            `json:"message"`
	Ok                   bool              `json:"ok"`
	Timestamp            string            `json:"timestamp"`
	URL                  string            `json:"url"`
	Type                 string            `json:"type,omitempty"`
	Details              map[string]string `json:"details,omitempty"`
	UsageCount           *int64            `json:"usageCount,omitempty"`
	RequiresConfirmation bool              `json:"requiresConfirmation,omitempty"`
}

// SuccessResponseStruct defines the schema common to success responses
type SuccessResponseStruct struct {
	Message   string `json:"message,omitempty"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}
