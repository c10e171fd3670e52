package ticket

import (
	"context"
	"errors"
	"strconv"
	"time"

	"backend-helpqueue/internal/models"
	"backend-helpqueue/internal/store"

	"github.com/redis/go-redis/v9"
)

// Manager tracks per-ticket records in ticket:{session}:{seq} hashes.
// A ticket is Open until it is resolved (helped = 1) or cancelled
// (record deleted). Sequence numbers come from the session's
// num_tickets counter and are never reused.
type Manager struct {
	rdb *redis.Client
	now func() time.Time
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb, now: time.Now}
}

// Create allocates the next sequence number, stores the ticket record
// and indexes the submitter's outstanding ticket.
func (m *Manager) Create(ctx context.Context, sessionID, submitter, question string, submittedAt time.Time) (int64, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	seq, err := m.rdb.HIncrBy(ctx, store.SessionKey(sessionID), "num_tickets", 1).Result()
	if err != nil {
		return 0, store.WrapErr(err)
	}

	err = m.rdb.HSet(ctx, store.TicketKey(sessionID, seq),
		"user", submitter,
		"question", question,
		"helped", 0,
		"submitted_at", submittedAt.UnixMilli(),
	).Err()
	if err != nil {
		return 0, store.WrapErr(err)
	}

	if err := m.rdb.HSet(ctx, store.TicketIndexKey(sessionID), submitter, seq).Err(); err != nil {
		return 0, store.WrapErr(err)
	}

	return seq, nil
}

// OutstandingSeq resolves a submitter to their current open ticket.
func (m *Manager) OutstandingSeq(ctx context.Context, sessionID, submitter string) (int64, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	seq, err := m.rdb.HGet(ctx, store.TicketIndexKey(sessionID), submitter).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, models.ErrTicketNotFound
	}
	if err != nil {
		return 0, store.WrapErr(err)
	}
	return seq, nil
}

// Resolve marks the ticket helped, stamps the wait time and bumps the
// session's helped_tickets counter. Only Open tickets can transition.
func (m *Manager) Resolve(ctx context.Context, sessionID string, seq int64) error {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	key := store.TicketKey(sessionID, seq)
	data, err := m.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return store.WrapErr(err)
	}
	if len(data) == 0 || data["helped"] == "1" {
		return models.ErrTicketNotFound
	}

	submittedMs, _ := strconv.ParseInt(data["submitted_at"], 10, 64)
	now := m.now()
	elapsed := now.UnixMilli() - submittedMs

	err = m.rdb.HSet(ctx, key,
		"helped", 1,
		"resolved_at", now.UnixMilli(),
		"elapsed_ms", elapsed,
	).Err()
	if err != nil {
		return store.WrapErr(err)
	}

	if err := m.rdb.HIncrBy(ctx, store.SessionKey(sessionID), "helped_tickets", 1).Err(); err != nil {
		return store.WrapErr(err)
	}

	if err := m.rdb.HDel(ctx, store.TicketIndexKey(sessionID), data["user"]).Err(); err != nil {
		return store.WrapErr(err)
	}

	return nil
}

// ResolveBySubmitter resolves a submitter's outstanding ticket.
func (m *Manager) ResolveBySubmitter(ctx context.Context, sessionID, submitter string) (int64, error) {
	seq, err := m.OutstandingSeq(ctx, sessionID, submitter)
	if err != nil {
		return 0, err
	}
	if err := m.Resolve(ctx, sessionID, seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// CancelBySubmitter drops a submitter's outstanding ticket without
// recording a resolution. The record is gone for good: cancelled
// tickets are not archived and helped_tickets is untouched.
func (m *Manager) CancelBySubmitter(ctx context.Context, sessionID, submitter string) (int64, error) {
	seq, err := m.OutstandingSeq(ctx, sessionID, submitter)
	if err != nil {
		return 0, err
	}

	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	if err := m.rdb.Del(ctx, store.TicketKey(sessionID, seq)).Err(); err != nil {
		return 0, store.WrapErr(err)
	}
	if err := m.rdb.HDel(ctx, store.TicketIndexKey(sessionID), submitter).Err(); err != nil {
		return 0, store.WrapErr(err)
	}
	return seq, nil
}

// Get loads one ticket record. A missing record (cancelled or never
// allocated) reports ErrTicketNotFound.
func (m *Manager) Get(ctx context.Context, sessionID string, seq int64) (*models.Ticket, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	data, err := m.rdb.HGetAll(ctx, store.TicketKey(sessionID, seq)).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	if len(data) == 0 {
		return nil, models.ErrTicketNotFound
	}

	submittedMs, _ := strconv.ParseInt(data["submitted_at"], 10, 64)
	t := &models.Ticket{
		Seq:         seq,
		Submitter:   data["user"],
		Question:    data["question"],
		Helped:      data["helped"] == "1",
		SubmittedAt: time.UnixMilli(submittedMs),
	}
	if t.Helped {
		resolvedMs, _ := strconv.ParseInt(data["resolved_at"], 10, 64)
		resolvedAt := time.UnixMilli(resolvedMs)
		t.ResolvedAt = &resolvedAt
		t.ElapsedMs, _ = strconv.ParseInt(data["elapsed_ms"], 10, 64)
	}
	return t, nil
}
