package models

import "time"

type EventType string

const (
	EventQueueUpdated         EventType = "queue_updated"
	EventAnnouncementsUpdated EventType = "announcements_updated"
	EventFAQUpdated           EventType = "faq_updated"
	EventSessionClosed        EventType = "session_closed"
)

// Event is fanned out to every subscriber of a session whenever its
// state changes. Delivery is best-effort; a new subscriber gets no
// replay and should fetch current state separately.
type Event struct {
	EventID       string    `json:"event_id"`
	Type          EventType `json:"type"`
	SessionID     string    `json:"session_id"`
	Queue         []string  `json:"queue"`
	Announcements []string  `json:"announcements,omitempty"`
	FAQs          []FAQ     `json:"faqs,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
