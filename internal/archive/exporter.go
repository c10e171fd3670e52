package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"backend-helpqueue/internal/models"
	"backend-helpqueue/internal/store"
	"backend-helpqueue/internal/ticket"

	"github.com/redis/go-redis/v9"
)

// UserResolver enriches archived tickets with user details.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) models.UserRef
}

// Exporter folds a session's ephemeral state into one immutable archive
// row, then purges the ephemeral keys. The durable insert always comes
// first: if it fails, nothing is deleted.
type Exporter struct {
	rdb     *redis.Client
	db      *sql.DB
	tickets *ticket.Manager
	users   UserResolver
	now     func() time.Time
}

func NewExporter(rdb *redis.Client, db *sql.DB, tickets *ticket.Manager, users UserResolver) *Exporter {
	return &Exporter{rdb: rdb, db: db, tickets: tickets, users: users, now: time.Now}
}

// Export archives the session and tears down its ephemeral state. When
// the session is already closed it returns the most recent stored
// archive instead of re-exporting, so Close stays idempotent.
func (e *Exporter) Export(ctx context.Context, sessionID string) (*models.Archive, error) {
	// One bounded context covers the read phase so a hung store cannot
	// stall Close indefinitely. Per-ticket reads bound themselves.
	rctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	meta, err := e.rdb.HGetAll(rctx, store.SessionKey(sessionID)).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	if len(meta) == 0 {
		return e.latest(ctx, sessionID)
	}

	numTickets, _ := strconv.ParseInt(meta["num_tickets"], 10, 64)
	helped, _ := strconv.ParseInt(meta["helped_tickets"], 10, 64)

	announcements, err := e.rdb.LRange(rctx, store.AnnouncementsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	faqRaw, err := e.rdb.LRange(rctx, store.FAQKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}

	// Walk every allocated sequence number. A missing record was
	// cancelled and is skipped; open tickets are archived unresolved.
	questions := []models.ArchivedTicket{}
	ticketKeys := []string{}
	var sumElapsed, resolved int64

	for seq := int64(1); seq <= numTickets; seq++ {
		t, err := e.tickets.Get(ctx, sessionID, seq)
		if errors.Is(err, models.ErrTicketNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ticketKeys = append(ticketKeys, store.TicketKey(sessionID, seq))

		entry := models.ArchivedTicket{
			Seq:         seq,
			User:        e.users.ResolveUser(ctx, t.Submitter),
			Question:    t.Question,
			Helped:      t.Helped,
			SubmittedAt: t.SubmittedAt,
		}
		if t.Helped {
			entry.ElapsedMs = t.ElapsedMs
			sumElapsed += t.ElapsedMs
			resolved++
		}
		questions = append(questions, entry)
	}

	var avg int64
	if resolved > 0 {
		avg = sumElapsed / resolved
	}

	arch := &models.Archive{
		GroupID:       sessionID,
		Title:         meta["title"],
		Tickets:       int64(len(questions)),
		TicketsHelped: helped,
		AvgResponseMs: avg,
		Questions:     questions,
		Announcements: announcements,
		FAQs:          models.ParseFAQs(faqRaw),
		ClosedAt:      e.now(),
	}

	if err := e.insert(ctx, arch); err != nil {
		return nil, err
	}
	if err := e.purge(ctx, sessionID, ticketKeys); err != nil {
		return nil, err
	}
	return arch, nil
}

func (e *Exporter) insert(ctx context.Context, arch *models.Archive) error {
	questionsJSON, _ := json.Marshal(arch.Questions)
	announcementsJSON, _ := json.Marshal(arch.Announcements)
	faqsJSON, _ := json.Marshal(arch.FAQs)

	res, err := e.db.ExecContext(ctx, `
		INSERT INTO session_archives
		(group_id, title, tickets, tickets_helped, avg_response_ms, questions, announcements, faqs, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, arch.GroupID, arch.Title, arch.Tickets, arch.TicketsHelped, arch.AvgResponseMs,
		questionsJSON, announcementsJSON, faqsJSON, arch.ClosedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrArchiveWriteFailed, err)
	}

	arch.ID, _ = res.LastInsertId()
	return nil
}

// purge deletes every ephemeral key of the session as one unit. Runs
// only after the archive row is durable.
func (e *Exporter) purge(ctx context.Context, sessionID string, ticketKeys []string) error {
	keys := append([]string{
		store.SessionKey(sessionID),
		store.QueueKey(sessionID),
		store.TicketIndexKey(sessionID),
		store.AnnouncementsKey(sessionID),
		store.FAQKey(sessionID),
	}, ticketKeys...)

	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	if err := e.rdb.Del(ctx, keys...).Err(); err != nil {
		return store.WrapErr(err)
	}
	if err := e.rdb.SRem(ctx, store.ActiveSessionsKey, sessionID).Err(); err != nil {
		return store.WrapErr(err)
	}
	return nil
}

// ListArchives returns every archive produced for a group, newest
// first.
func (e *Exporter) ListArchives(ctx context.Context, groupID string) ([]models.Archive, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, group_id, title, tickets, tickets_helped, avg_response_ms, questions, announcements, faqs, closed_at
		FROM session_archives
		WHERE group_id = ?
		ORDER BY closed_at DESC, id DESC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	archives := []models.Archive{}
	for rows.Next() {
		var arch models.Archive
		var questionsJSON, announcementsJSON, faqsJSON []byte
		err := rows.Scan(
			&arch.ID,
			&arch.GroupID,
			&arch.Title,
			&arch.Tickets,
			&arch.TicketsHelped,
			&arch.AvgResponseMs,
			&questionsJSON,
			&announcementsJSON,
			&faqsJSON,
			&arch.ClosedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		_ = json.Unmarshal(questionsJSON, &arch.Questions)
		_ = json.Unmarshal(announcementsJSON, &arch.Announcements)
		_ = json.Unmarshal(faqsJSON, &arch.FAQs)
		archives = append(archives, arch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return archives, nil
}

// latest backs Close idempotency: once the ephemeral state is gone the
// already-produced archive is handed back instead of a re-export.
func (e *Exporter) latest(ctx context.Context, groupID string) (*models.Archive, error) {
	archives, err := e.ListArchives(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		return nil, models.ErrSessionNotFound
	}
	return &archives[0], nil
}
