package models

import (
	"encoding/json"
	"time"
)

/*
|--------------------------------------------------------------------------
| EPHEMERAL STATE (REDIS)
|--------------------------------------------------------------------------
| One active session per group/section. Everything here lives in Redis
| until the session is closed and folded into an Archive.
*/

type SessionView struct {
	SessionID     string    `json:"session_id"`
	Title         string    `json:"title,omitempty"`
	TicketCount   int64     `json:"ticket_count"`
	HelpedCount   int64     `json:"helped_count"`
	OpenedAt      time.Time `json:"opened_at"`
	Queue         []string  `json:"queue"`
	Announcements []string  `json:"announcements"`
	FAQs          []FAQ     `json:"faqs"`
}

// Ticket is one help request, identified by its sequence number within
// the session. Sequence numbers are never reused, even across cancels.
type Ticket struct {
	Seq         int64      `json:"seq"`
	Submitter   string     `json:"submitter"`
	Question    string     `json:"question"`
	Helped      bool       `json:"helped"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ElapsedMs   int64      `json:"elapsed_ms,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ParseFAQs decodes the JSON records stored in the faq list, skipping
// anything malformed.
func ParseFAQs(items []string) []FAQ {
	faqs := []FAQ{}
	for _, item := range items {
		var faq FAQ
		if err := json.Unmarshal([]byte(item), &faq); err != nil {
			continue
		}
		faqs = append(faqs, faq)
	}
	return faqs
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/

type OpenSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Title     string `json:"title"`
}

type AddTicketRequest struct {
	Question string `json:"question" validate:"required"`
}

type AnnouncementRequest struct {
	Announcement string `json:"announcement" validate:"required"`
}

type FAQRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}
