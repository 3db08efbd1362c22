package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPKey(t *testing.T) {
	assert.Equal(t, "otp:a@b.com", otpKey("a@b.com"))
}

// The tests below talk to a real server and are skipped unless
// REDIS_TEST_ADDR is set.
func newIntegrationClient(t *testing.T) *OTPStore {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is required for redis integration tests")
	}
	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewOTPStore(client)
}

func TestOTPStore_ConsumeIsSingleUse(t *testing.T) {
	store := newIntegrationClient(t)
	ctx := context.Background()
	email := "otp-" + time.Now().Format("150405.000000") + "@b.com"

	require.NoError(t, store.Save(ctx, email, "123456", time.Minute))

	ok, err := store.Consume(ctx, email, "000000")
	require.NoError(t, err)
	assert.False(t, ok, "wrong code must not match")

	ok, err = store.Consume(ctx, email, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, email, "123456")
	require.NoError(t, err)
	assert.False(t, ok, "code must not be reusable")
}

func TestThrottle_AdmitsOncePerWindow(t *testing.T) {
	store := newIntegrationClient(t)
	throttle := NewThrottle(store.client)
	ctx := context.Background()
	key := "test:" + time.Now().Format("150405.000000")

	ok, err := throttle.Allow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
