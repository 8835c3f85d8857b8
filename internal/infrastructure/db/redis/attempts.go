package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts   = 10
	defaultAttemptWindow = 15 * time.Minute
)

// AttemptCounter counts failed confirmation-code exchanges per username in a
// fixed window. The window starts at the first failure.
// Key format: auth:attempts:<username>
type AttemptCounter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewAttemptCounter wraps client. Non-positive limits fall back to defaults.
func NewAttemptCounter(client *redis.Client, max int, window time.Duration) *AttemptCounter {
	if max <= 0 {
		max = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultAttemptWindow
	}
	return &AttemptCounter{client: client, max: int64(max), window: window}
}

// Exceeded reports whether username has used up its failures for the window.
func (c *AttemptCounter) Exceeded(ctx context.Context, username string) (bool, error) {
	n, err := c.client.Get(ctx, c.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("attempts check: %w", err)
	}
	return n >= c.max, nil
}

// RecordFailure increments the counter, starting the window on first use.
func (c *AttemptCounter) RecordFailure(ctx context.Context, username string) error {
	key := c.key(username)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, c.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("attempts record: %w", err)
	}
	return nil
}

// Reset forgets all failures of username.
func (c *AttemptCounter) Reset(ctx context.Context, username string) error {
	if err := c.client.Del(ctx, c.key(username)).Err(); err != nil {
		return fmt.Errorf("attempts reset: %w", err)
	}
	return nil
}

func (c *AttemptCounter) key(username string) string {
	return fmt.Sprintf("auth:attempts:%s", username)
}
