package store

import "fmt"

// Redis key layout for ephemeral session state. Every key of a session
// derives from the caller-supplied session id so that closing a session
// can purge them as one unit.
const ActiveSessionsKey = "sessions"

func SessionKey(sessionID string) string {
	return "session:" + sessionID
}

func QueueKey(sessionID string) string {
	return "queue:" + sessionID
}

func TicketKey(sessionID string, seq int64) string {
	return fmt.Sprintf("ticket:%s:%d", sessionID, seq)
}

// TicketIndexKey holds the submitter -> outstanding ticket seq mapping.
func TicketIndexKey(sessionID string) string {
	return "tickets:" + sessionID
}

func AnnouncementsKey(sessionID string) string {
	return "announcements:" + sessionID
}

func FAQKey(sessionID string) string {
	return "faq:" + sessionID
}
