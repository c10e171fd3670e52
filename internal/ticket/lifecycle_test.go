package ticket

import (
	"context"
	"testing"
	"time"

	"backend-helpqueue/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestManager_CreateAllocatesSequence(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	at := time.UnixMilli(1_700_000_000_000)

	mock.ExpectHIncrBy("session:sec1", "num_tickets", 1).SetVal(1)
	mock.ExpectHSet("ticket:sec1:1",
		"user", "alice",
		"question", "how do pointers work?",
		"helped", 0,
		"submitted_at", at.UnixMilli(),
	).SetVal(4)
	mock.ExpectHSet("tickets:sec1", "alice", int64(1)).SetVal(1)

	seq, err := manager.Create(context.Background(), "sec1", "alice", "how do pointers work?", at)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_SequenceNeverReused(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	at := time.UnixMilli(1_700_000_000_000)

	// Counter already advanced past cancelled tickets.
	mock.ExpectHIncrBy("session:sec1", "num_tickets", 1).SetVal(5)
	mock.ExpectHSet("ticket:sec1:5",
		"user", "bob",
		"question", "what is a monad?",
		"helped", 0,
		"submitted_at", at.UnixMilli(),
	).SetVal(4)
	mock.ExpectHSet("tickets:sec1", "bob", int64(5)).SetVal(1)

	seq, err := manager.Create(context.Background(), "sec1", "bob", "what is a monad?", at)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), seq)
}

func TestManager_ResolveStampsWaitTime(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	submitted := time.UnixMilli(1_700_000_000_000)
	now := submitted.Add(90 * time.Second)
	manager.now = func() time.Time { return now }

	mock.ExpectHGetAll("ticket:sec1:1").SetVal(map[string]string{
		"user":         "alice",
		"question":     "how do pointers work?",
		"helped":       "0",
		"submitted_at": "1700000000000",
	})
	mock.ExpectHSet("ticket:sec1:1",
		"helped", 1,
		"resolved_at", now.UnixMilli(),
		"elapsed_ms", int64(90_000),
	).SetVal(3)
	mock.ExpectHIncrBy("session:sec1", "helped_tickets", 1).SetVal(1)
	mock.ExpectHDel("tickets:sec1", "alice").SetVal(1)

	err := manager.Resolve(context.Background(), "sec1", 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_ResolveMissingTicket(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	mock.ExpectHGetAll("ticket:sec1:9").SetVal(map[string]string{})

	err := manager.Resolve(context.Background(), "sec1", 9)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestManager_ResolveIsTerminal(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	mock.ExpectHGetAll("ticket:sec1:1").SetVal(map[string]string{
		"user":         "alice",
		"helped":       "1",
		"submitted_at": "1700000000000",
	})

	err := manager.Resolve(context.Background(), "sec1", 1)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestManager_CancelDeletesRecord(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	mock.ExpectHGet("tickets:sec1", "alice").SetVal("2")
	mock.ExpectDel("ticket:sec1:2").SetVal(1)
	mock.ExpectHDel("tickets:sec1", "alice").SetVal(1)

	seq, err := manager.CancelBySubmitter(context.Background(), "sec1", "alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_OutstandingSeqUnknownSubmitter(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	mock.ExpectHGet("tickets:sec1", "nobody").RedisNil()

	_, err := manager.OutstandingSeq(context.Background(), "sec1", "nobody")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestManager_GetResolvedTicket(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	manager := NewManager(rdb)

	mock.ExpectHGetAll("ticket:sec1:3").SetVal(map[string]string{
		"user":         "bob",
		"question":     "what is a monad?",
		"helped":       "1",
		"submitted_at": "1700000000000",
		"resolved_at":  "1700000060000",
		"elapsed_ms":   "60000",
	})

	ticket, err := manager.Get(context.Background(), "sec1", 3)
	assert.NoError(t, err)
	assert.Equal(t, "bob", ticket.Submitter)
	assert.True(t, ticket.Helped)
	assert.Equal(t, int64(60_000), ticket.ElapsedMs)
	assert.Equal(t, time.UnixMilli(1_700_000_060_000), *ticket.ResolvedAt)
}
