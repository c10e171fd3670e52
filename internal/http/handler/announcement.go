package handler

import (
	"backend-helpqueue/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAnnouncements - All announcements of a session, most recent first
func GetAnnouncements(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	announcements, err := Sessions.Announcements(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    announcements,
	})
}

// PostAnnouncement - Add an announcement to a session
func PostAnnouncement(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var req models.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Announcement == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "announcement is required",
		})
	}

	if err := Sessions.PostAnnouncement(c.Context(), sessionID, req.Announcement); err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Announcement posted",
	})
}

// ClearAnnouncements - Drop every announcement of a session
func ClearAnnouncements(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	if err := Sessions.ClearAnnouncements(c.Context(), sessionID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Announcements cleared",
	})
}
