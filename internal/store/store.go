package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-helpqueue/internal/models"

	"github.com/redis/go-redis/v9"
)

// Timeout bounds every state-store call. Overridden at startup from
// STORE_TIMEOUT_MS.
var Timeout = 5 * time.Second

// WithTimeout derives the bounded context used for store calls, so a
// slow or partitioned Redis surfaces ErrStoreUnavailable instead of
// hanging the caller.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Timeout)
}

// WrapErr classifies a store error. redis.Nil passes through untouched
// so callers can map it to their own not-found sentinel; everything
// else is a transport-level failure the caller may retry.
func WrapErr(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}
