package handler

import (
	"errors"

	"backend-helpqueue/internal/archive"
	"backend-helpqueue/internal/models"
	"backend-helpqueue/internal/realtime"
	"backend-helpqueue/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Wired once from main before the server starts listening.
var (
	Sessions *session.Manager
	Archives *archive.Exporter
	Hub      *realtime.Hub
)

// errorResponse translates domain sentinels to status codes. The core
// never sees HTTP; this is the only place the mapping lives.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrSessionActive),
		errors.Is(err, models.ErrAlreadyQueued):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrQueueEmpty):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, models.ErrArchiveWriteFailed):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
