package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"microblog/internal/kv"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	l := NewRateLimiter(kv.NewMemoryStore(clock), clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "login:1.2.3.4", 3, time.Minute))
	}
	assert.False(t, l.Allow(ctx, "login:1.2.3.4", 3, time.Minute))
	assert.True(t, l.Allow(ctx, "login:5.6.7.8", 3, time.Minute), "ключи независимы")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "login:1.2.3.4", 3, time.Minute))
}

type failingStore struct{ kv.Store }

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	l := NewRateLimiter(failingStore{}, nil)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(context.Background(), "k", 1, time.Minute))
	}
}
