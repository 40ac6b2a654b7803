package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// jsonSuccess writes the standard success envelope.
func jsonSuccess(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError writes the standard error envelope.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
