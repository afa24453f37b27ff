package utils

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryConfig holds the parameters for the retry strategy shared by
// outbound calls (comp search fetch, LLM attempts).
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do executes fn with exponential back-off between attempts. The last
// error is returned once the attempt budget is exhausted. Context
// cancellation stops the loop between attempts.
func (r RetryConfig) Do(ctx context.Context, operation string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := r.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			log.Printf("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operation, attempt, attempts, lastErr, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
