package handler

import (
	"github.com/gofiber/fiber/v2"
)

// ListArchives - Every archived session of a group, newest first
func ListArchives(c *fiber.Ctx) error {
	groupID := c.Params("groupId")

	archives, err := Archives.ListArchives(c.Context(), groupID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    archives,
	})
}
