package models

import "time"

// UserRef is an embedded user reference on an archived ticket. When the
// directory lookup fails only the ID is kept (a "ghost" reference).
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type ArchivedTicket struct {
	Seq         int64     `json:"seq"`
	User        UserRef   `json:"user"`
	Question    string    `json:"question"`
	Helped      bool      `json:"helped"`
	SubmittedAt time.Time `json:"submitted_at"`
	ElapsedMs   int64     `json:"elapsed_ms,omitempty"`
}

// Archive is the immutable durable record of one closed session.
// Cancelled tickets are excluded; they never consumed a serving slot.
type Archive struct {
	ID            int64            `json:"id"`
	GroupID       string           `json:"group_id"`
	Title         string           `json:"title,omitempty"`
	Tickets       int64            `json:"tickets"`
	TicketsHelped int64            `json:"tickets_helped"`
	AvgResponseMs int64            `json:"avg_response_ms"`
	Questions     []ArchivedTicket `json:"questions"`
	Announcements []string         `json:"announcements"`
	FAQs          []FAQ            `json:"faqs"`
	ClosedAt      time.Time        `json:"closed_at"`
}
