package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workhive/marketplace-api/internal/core/ports"
)

// Throttle admits the first request per key within a window.
// Key format: throttle:<key>
type Throttle struct {
	client *redis.Client
}

// NewThrottle creates a Throttle wrapping the given Redis client.
func NewThrottle(client *redis.Client) *Throttle {
	return &Throttle{client: client}
}

var _ ports.RequestThrottle = (*Throttle)(nil)

// Allow reports whether no other request for key was admitted within window.
func (t *Throttle) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, "throttle:"+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle: %w", err)
	}
	return ok, nil
}
