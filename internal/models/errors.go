package models

import "errors"

// Domain-level sentinel errors. These carry no HTTP information; the
// handler layer decides status codes.
var (
	// ErrSessionActive indicates an open session already exists for the id.
	ErrSessionActive = errors.New("session already active")

	// ErrSessionNotFound indicates no active session exists for the id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTicketNotFound indicates the ticket does not exist or is no longer open.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrAlreadyQueued indicates the submitter already has an outstanding entry.
	ErrAlreadyQueued = errors.New("submitter already in queue")

	// ErrQueueEmpty indicates there is no one waiting in the queue.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrStoreUnavailable indicates a transient state-store failure.
	// This is the only class a caller should retry.
	ErrStoreUnavailable = errors.New("state store unavailable")

	// ErrArchiveWriteFailed indicates the durable archive insert failed.
	// Ephemeral session state is left untouched when this is returned.
	ErrArchiveWriteFailed = errors.New("archive write failed")
)
