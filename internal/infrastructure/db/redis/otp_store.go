package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workhive/marketplace-api/internal/core/ports"
)

// consumeScript deletes the key only when it holds the submitted code, so a
// code can be redeemed exactly once even under concurrent submissions.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPStore keeps one-time codes under otp:<email> with a TTL.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore creates an OTPStore wrapping the given Redis client.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

var _ ports.OTPStore = (*OTPStore)(nil)

// Save replaces any previous code for email.
func (s *OTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Consume(ctx context.Context, email, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	n, err := consumeScript.Run(ctx, s.client, []string{otpKey(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return n == 1, nil
}

func otpKey(email string) string {
	return "otp:" + email
}
