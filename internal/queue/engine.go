package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-helpqueue/internal/models"
	"backend-helpqueue/internal/store"

	"github.com/redis/go-redis/v9"
)

// Engine is the FIFO-by-arrival priority queue of one session, backed by
// a Redis sorted set keyed queue:{session_id}. The member is the
// submitter id, the score is the arrival wall-clock time, so re-added
// submitters naturally sort behind everyone already waiting. Equal
// scores fall back to Redis' lexicographic member order, which keeps
// ties deterministic.
type Engine struct {
	rdb *redis.Client
}

func NewEngine(rdb *redis.Client) *Engine {
	return &Engine{rdb: rdb}
}

// Enqueue inserts the submitter with the arrival time as score and
// returns the 1-based position. ZADD NX is atomic, so two racing calls
// for the same submitter can never both succeed.
func (e *Engine) Enqueue(ctx context.Context, sessionID, submitter string, arrival time.Time) (int64, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	added, err := e.rdb.ZAddNX(ctx, store.QueueKey(sessionID), redis.Z{
		Score:  float64(arrival.UnixMilli()),
		Member: submitter,
	}).Result()
	if err != nil {
		return 0, store.WrapErr(err)
	}
	if added == 0 {
		return 0, models.ErrAlreadyQueued
	}

	position, err := e.PositionOf(ctx, sessionID, submitter)
	if err != nil {
		// The member is already inserted at this point. Take it back out
		// so a retry is not rejected as a duplicate with no ticket
		// record behind it.
		if rerr := e.rdb.ZRem(ctx, store.QueueKey(sessionID), submitter).Err(); rerr != nil {
			log.Printf("[queue] rollback enqueue %s/%s: %v", sessionID, submitter, rerr)
		}
		return 0, err
	}
	return position, nil
}

// DequeueHighestPriority atomically removes and returns the earliest
// submitter. ZPOPMIN guarantees two racing callers never both get the
// same entry.
func (e *Engine) DequeueHighestPriority(ctx context.Context, sessionID string) (string, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	popped, err := e.rdb.ZPopMin(ctx, store.QueueKey(sessionID), 1).Result()
	if err != nil {
		return "", store.WrapErr(err)
	}
	if len(popped) == 0 {
		return "", models.ErrQueueEmpty
	}

	submitter, _ := popped[0].Member.(string)
	return submitter, nil
}

// Remove takes a specific submitter out of the queue regardless of rank.
func (e *Engine) Remove(ctx context.Context, sessionID, submitter string) (bool, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	removed, err := e.rdb.ZRem(ctx, store.QueueKey(sessionID), submitter).Result()
	if err != nil {
		return false, store.WrapErr(err)
	}
	return removed > 0, nil
}

// PositionOf returns the submitter's 1-based rank among outstanding
// entries.
func (e *Engine) PositionOf(ctx context.Context, sessionID, submitter string) (int64, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	rank, err := e.rdb.ZRank(ctx, store.QueueKey(sessionID), submitter).Result()
	if errors.Is(err, redis.Nil) {
		return 0, models.ErrTicketNotFound
	}
	if err != nil {
		return 0, store.WrapErr(err)
	}
	return rank + 1, nil
}

// Snapshot returns every outstanding submitter, earliest first.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) ([]string, error) {
	ctx, cancel := store.WithTimeout(ctx)
	defer cancel()

	members, err := e.rdb.ZRange(ctx, store.QueueKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, store.WrapErr(err)
	}
	return members, nil
}
