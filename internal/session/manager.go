package session

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"backend-helpqueue/internal/models"
	"backend-helpqueue/internal/queue"
	"backend-helpqueue/internal/store"
	"backend-helpqueue/internal/ticket"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier fans state-change events out to session subscribers. Publish
// must never block the mutating call.
type Notifier interface {
	Publish(sessionID string, ev models.Event)
}

// Archiver converts a session into its durable archive.
type Archiver interface {
	Export(ctx context.Context, sessionID string) (*models.Archive, error)
}

// Manager owns session existence and orchestrates the queue, ticket
// records, announcements and FAQ of each active session. All state
// lives in Redis; concurrent handlers coordinate only through the
// store's atomic primitives.
type Manager struct {
	rdb      *redis.Client
	queue    *queue.Engine
	tickets  *ticket.Manager
	notifier Notifier
	archiver Archiver
	now      func() time.Time
}

func NewManager(rdb *redis.Client, engine *queue.Engine, tickets *ticket.Manager, notifier Notifier, archiver Archiver) *Manager {
	return &Manager{
		rdb:      rdb,
		queue:    engine,
		tickets:  tickets,
		notifier: notifier,
		archiver: archiver,
		now:      time.Now,
	}
}

// Open starts a session for the group. SADD on the active set is the
// atomic insert-if-absent gate: at most one active session per id.
func (m *Manager) Open(ctx context.Context, sessionID, title string) (*models.SessionView, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	added, err := m.rdb.SAdd(ctx, store.ActiveSessionsKey, sessionID).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	if added == 0 {
		return nil, models.ErrSessionActive
	}

	openedAt := m.now()
	err = m.rdb.HSet(ctx, store.SessionKey(sessionID),
		"title", title,
		"num_tickets", 0,
		"helped_tickets", 0,
		"opened_at", openedAt.UnixMilli(),
	).Err()
	if err != nil {
		// Roll the registration back so a retry can succeed.
		if rerr := m.rdb.SRem(ctx, store.ActiveSessionsKey, sessionID).Err(); rerr != nil {
			log.Printf("[session] rollback open %s: %v", sessionID, rerr)
		}
		return nil, store.WrapErr(err)
	}

	return &models.SessionView{
		SessionID:     sessionID,
		Title:         title,
		OpenedAt:      openedAt,
		Queue:         []string{},
		Announcements: []string{},
		FAQs:          []models.FAQ{},
	}, nil
}

// List returns the ids of every active session.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	ids, err := m.rdb.SMembers(ctx, store.ActiveSessionsKey).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	return ids, nil
}

// Get returns the full current view: metadata, queue snapshot,
// announcements and FAQ.
func (m *Manager) Get(ctx context.Context, sessionID string) (*models.SessionView, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	meta, err := m.rdb.HGetAll(ctx, store.SessionKey(sessionID)).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	if len(meta) == 0 {
		return nil, models.ErrSessionNotFound
	}

	ticketCount, _ := strconv.ParseInt(meta["num_tickets"], 10, 64)
	helpedCount, _ := strconv.ParseInt(meta["helped_tickets"], 10, 64)
	openedMs, _ := strconv.ParseInt(meta["opened_at"], 10, 64)

	snap, err := m.queue.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	announcements, err := m.announcementList(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	faqs, err := m.faqList(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.SessionView{
		SessionID:     sessionID,
		Title:         meta["title"],
		TicketCount:   ticketCount,
		HelpedCount:   helpedCount,
		OpenedAt:      time.UnixMilli(openedMs),
		Queue:         snap,
		Announcements: announcements,
		FAQs:          faqs,
	}, nil
}

// AddTicket enqueues the submitter and creates the ticket record. If
// the record cannot be written the queue entry is removed again, so no
// orphaned entry survives a partial failure.
func (m *Manager) AddTicket(ctx context.Context, sessionID, submitter, question string) (int64, error) {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return 0, err
	}

	position, err := m.queue.Enqueue(ctx, sessionID, submitter, m.now())
	if err != nil {
		return 0, err
	}

	if _, err := m.tickets.Create(ctx, sessionID, submitter, question, m.now()); err != nil {
		if _, rerr := m.queue.Remove(ctx, sessionID, submitter); rerr != nil {
			log.Printf("[session] rollback enqueue %s/%s: %v", sessionID, submitter, rerr)
		}
		return 0, err
	}

	m.publishQueue(ctx, sessionID, models.EventQueueUpdated)
	return position, nil
}

// ResolveNext serves the earliest waiting submitter.
func (m *Manager) ResolveNext(ctx context.Context, sessionID string) (string, error) {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return "", err
	}

	submitter, err := m.queue.DequeueHighestPriority(ctx, sessionID)
	if err != nil {
		return "", err
	}

	// Between the pop and the resolve the ticket is briefly "in
	// transition": gone from the queue, not yet marked helped. Readers
	// treat that as normal, so a failure here is surfaced as-is.
	if _, err := m.tickets.ResolveBySubmitter(ctx, sessionID, submitter); err != nil {
		return "", err
	}

	m.publishQueue(ctx, sessionID, models.EventQueueUpdated)
	return submitter, nil
}

// ResolveSpecific serves a named submitter out of order.
func (m *Manager) ResolveSpecific(ctx context.Context, sessionID, submitter string) error {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return err
	}

	removed, err := m.queue.Remove(ctx, sessionID, submitter)
	if err != nil {
		return err
	}
	if !removed {
		return models.ErrTicketNotFound
	}

	if _, err := m.tickets.ResolveBySubmitter(ctx, sessionID, submitter); err != nil {
		return err
	}

	m.publishQueue(ctx, sessionID, models.EventQueueUpdated)
	return nil
}

// CancelSpecific withdraws a waiting submitter without recording a
// resolution.
func (m *Manager) CancelSpecific(ctx context.Context, sessionID, submitter string) error {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return err
	}

	removed, err := m.queue.Remove(ctx, sessionID, submitter)
	if err != nil {
		return err
	}
	if !removed {
		return models.ErrTicketNotFound
	}

	if _, err := m.tickets.CancelBySubmitter(ctx, sessionID, submitter); err != nil {
		return err
	}

	m.publishQueue(ctx, sessionID, models.EventQueueUpdated)
	return nil
}

// PositionOf returns the submitter's current 1-based rank.
func (m *Manager) PositionOf(ctx context.Context, sessionID, submitter string) (int64, error) {
	return m.queue.PositionOf(ctx, sessionID, submitter)
}

// QueueSnapshot returns the outstanding submitters, earliest first. A
// session that was never opened, or has been closed, is not found.
func (m *Manager) QueueSnapshot(ctx context.Context, sessionID string) ([]string, error) {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.queue.Snapshot(ctx, sessionID)
}

// PostAnnouncement prepends an announcement (most recent first).
func (m *Manager) PostAnnouncement(ctx context.Context, sessionID, text string) error {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()
	if err := m.rdb.LPush(ctx, store.AnnouncementsKey(sessionID), text).Err(); err != nil {
		return store.WrapErr(err)
	}

	m.publishAnnouncements(ctx, sessionID)
	return nil
}

// Announcements lists the session's announcements, most recent first.
func (m *Manager) Announcements(ctx context.Context, sessionID string) ([]string, error) {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.announcementList(ctx, sessionID)
}

func (m *Manager) announcementList(ctx context.Context, sessionID string) ([]string, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	items, err := m.rdb.LRange(ctx, store.AnnouncementsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	return items, nil
}

func (m *Manager) ClearAnnouncements(ctx context.Context, sessionID string) error {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()
	if err := m.rdb.Del(ctx, store.AnnouncementsKey(sessionID)).Err(); err != nil {
		return store.WrapErr(err)
	}

	m.publishAnnouncements(ctx, sessionID)
	return nil
}

// AddFAQ stores one question/answer pair as a single JSON record.
func (m *Manager) AddFAQ(ctx context.Context, sessionID, question, answer string) error {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return err
	}

	entry, err := json.Marshal(models.FAQ{Question: question, Answer: answer})
	if err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()
	if err := m.rdb.LPush(ctx, store.FAQKey(sessionID), string(entry)).Err(); err != nil {
		return store.WrapErr(err)
	}

	m.publishFAQ(ctx, sessionID)
	return nil
}

// FAQs lists the session's FAQ entries, most recent first.
func (m *Manager) FAQs(ctx context.Context, sessionID string) ([]models.FAQ, error) {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.faqList(ctx, sessionID)
}

func (m *Manager) faqList(ctx context.Context, sessionID string) ([]models.FAQ, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	items, err := m.rdb.LRange(ctx, store.FAQKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	return models.ParseFAQs(items), nil
}

func (m *Manager) ClearFAQ(ctx context.Context, sessionID string) error {
	if err := m.ensureActive(ctx, sessionID); err != nil {
		return err
	}

	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()
	if err := m.rdb.Del(ctx, store.FAQKey(sessionID)).Err(); err != nil {
		return store.WrapErr(err)
	}

	m.publishFAQ(ctx, sessionID)
	return nil
}

// Close archives the session and tears down its ephemeral state.
// Idempotent: closing an already-closed session hands back the stored
// archive.
func (m *Manager) Close(ctx context.Context, sessionID string) (*models.Archive, error) {
	arch, err := m.archiver.Export(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m.publish(models.Event{
		Type:      models.EventSessionClosed,
		SessionID: sessionID,
		Queue:     []string{},
	})
	return arch, nil
}

// ensureActive gates mutating operations on session existence.
func (m *Manager) ensureActive(ctx context.Context, sessionID string) error {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	active, err := m.rdb.SIsMember(ctx, store.ActiveSessionsKey, sessionID).Result()
	if err != nil {
		return store.WrapErr(err)
	}
	if !active {
		return models.ErrSessionNotFound
	}
	return nil
}

func (m *Manager) publishQueue(ctx context.Context, sessionID string, eventType models.EventType) {
	snap, err := m.queue.Snapshot(ctx, sessionID)
	if err != nil {
		log.Printf("[session] snapshot for %s event failed: %v", eventType, err)
		return
	}
	m.publish(models.Event{
		Type:      eventType,
		SessionID: sessionID,
		Queue:     snap,
	})
}

func (m *Manager) publishAnnouncements(ctx context.Context, sessionID string) {
	snap, err := m.queue.Snapshot(ctx, sessionID)
	if err != nil {
		log.Printf("[session] snapshot for announcement event failed: %v", err)
		return
	}
	announcements, err := m.announcementList(ctx, sessionID)
	if err != nil {
		log.Printf("[session] announcement snapshot failed: %v", err)
		return
	}
	m.publish(models.Event{
		Type:          models.EventAnnouncementsUpdated,
		SessionID:     sessionID,
		Queue:         snap,
		Announcements: announcements,
	})
}

func (m *Manager) publishFAQ(ctx context.Context, sessionID string) {
	snap, err := m.queue.Snapshot(ctx, sessionID)
	if err != nil {
		log.Printf("[session] snapshot for faq event failed: %v", err)
		return
	}
	faqs, err := m.faqList(ctx, sessionID)
	if err != nil {
		log.Printf("[session] faq snapshot failed: %v", err)
		return
	}
	m.publish(models.Event{
		Type:      models.EventFAQUpdated,
		SessionID: sessionID,
		Queue:     snap,
		FAQs:      faqs,
	})
}

func (m *Manager) publish(ev models.Event) {
	if m.notifier == nil {
		return
	}
	ev.EventID = uuid.New().String()
	ev.Timestamp = m.now()
	m.notifier.Publish(ev.SessionID, ev)
}
