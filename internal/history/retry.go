package history

import (
	"context"
	"time"
)

// withRetry runs fn up to maxRetries+1 times, doubling the delay
// between attempts. The last error wins; context cancellation cuts
// the wait short.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	var err error
	delay := baseDelay
	for attempt := 0; attempt <= maxRetries || attempt == 0; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
