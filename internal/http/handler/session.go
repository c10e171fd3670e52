package handler

import (
	"backend-helpqueue/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllSessions - List every active help session
func GetAllSessions(c *fiber.Ctx) error {
	ids, err := Sessions.List(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    ids,
	})
}

// OpenSession - Start a help session for a group/section
func OpenSession(c *fiber.Ctx) error {
	var req models.OpenSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "session_id is required",
		})
	}

	view, err := Sessions.Open(c.Context(), req.SessionID, req.Title)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Session opened",
		"data":    view,
	})
}

// GetSession - Current metadata, queue snapshot, announcements and FAQ
func GetSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	view, err := Sessions.Get(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}

// CloseSession - End the session and archive its full history
func CloseSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	arch, err := Sessions.Close(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Session archived",
		"data":    arch,
	})
}
