package grader

import (
	"context"
	"time"
)

// retryPolicy describes the per-chunk retry budget: maxAttempts tries with
// exponential backoff doubling from backoffBase (2s, 4s, 8s at defaults).
type retryPolicy struct {
	maxAttempts int
	backoffBase time.Duration
}

// wait sleeps for the backoff delay following the given failed attempt,
// returning early if the context is cancelled.
func (p retryPolicy) wait(ctx context.Context, attempt int) error {
	delay := p.backoffBase << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
