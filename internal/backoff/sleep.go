package backoff

import (
	"context"
	"time"
)

// Sleep waits for duration or until ctx is cancelled, whichever comes
// first. Returns ctx.Err() on cancellation, nil otherwise. A
// non-positive duration returns immediately.
func Sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
