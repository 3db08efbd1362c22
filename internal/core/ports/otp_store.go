package ports

import (
	"context"
	"time"
)

// OTPStore keeps short-lived one-time codes keyed by email.
type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume reports whether code matches and, on a match, deletes it so it
	// cannot be used again.
	Consume(ctx context.Context, email, code string) (bool, error)
}

// RequestThrottle admits at most one request per key within a window.
type RequestThrottle interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}
