package handler

import (
	"backend-helpqueue/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddTicket - Join the queue with a question. Submitter identity comes
// from the authenticated caller.
func AddTicket(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	submitter := c.Locals("user_id").(string)

	var req models.AddTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "question is required",
		})
	}

	position, err := Sessions.AddTicket(c.Context(), sessionID, submitter, req.Question)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"position": position,
		},
	})
}

// GetQueue - Full queue snapshot, earliest first
func GetQueue(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	snap, err := Sessions.QueueSnapshot(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snap,
	})
}

// GetPosition - 1-based rank of one submitter
func GetPosition(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	submitter := c.Params("user")

	position, err := Sessions.PositionOf(c.Context(), sessionID, submitter)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"position": position,
		},
	})
}

// ResolveNext - Serve the earliest waiting submitter
func ResolveNext(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	submitter, err := Sessions.ResolveNext(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"submitter": submitter,
		},
	})
}

// ResolveSpecific - Serve a named submitter out of order
func ResolveSpecific(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	submitter := c.Params("user")

	if err := Sessions.ResolveSpecific(c.Context(), sessionID, submitter); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket resolved",
	})
}

// CancelTicket - Withdraw from the queue. Members may only withdraw
// themselves; mentors may withdraw anyone.
func CancelTicket(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	submitter := c.Params("user")

	callerID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	if submitter != callerID && role != "mentor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You can only withdraw your own ticket",
		})
	}

	if err := Sessions.CancelSpecific(c.Context(), sessionID, submitter); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket withdrawn",
	})
}
