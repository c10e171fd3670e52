package handler

import (
	"backend-helpqueue/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFAQs - All FAQ entries of a session
func GetFAQs(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	faqs, err := Sessions.FAQs(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    faqs,
	})
}

// AddFAQ - Add one question/answer pair to a session's FAQ
func AddFAQ(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var req models.FAQRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Question == "" || req.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "question and answer are required",
		})
	}

	if err := Sessions.AddFAQ(c.Context(), sessionID, req.Question, req.Answer); err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "FAQ added",
	})
}

// ClearFAQs - Drop a session's entire FAQ list
func ClearFAQs(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	if err := Sessions.ClearFAQ(c.Context(), sessionID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "FAQ cleared",
	})
}
