package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryStore_SetNX(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(c.now)

	ok, err := s.SetNX(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second SetNX must not overwrite")

	exists, _ := s.Exists(ctx, "k")
	assert.True(t, exists)

	c.t = c.t.Add(time.Minute)
	exists, _ = s.Exists(ctx, "k")
	assert.False(t, exists, "key must expire at ttl")

	ok, _ = s.SetNX(ctx, "k", time.Minute)
	assert.True(t, ok, "expired key can be set again")
}

func TestMemoryStore_Incr(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(c.now)

	for i := int64(1); i <= 3; i++ {
		n, err := s.Incr(ctx, "counter", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	// TTL не продлевается повторными Incr
	c.t = c.t.Add(59 * time.Minute)
	n, _ := s.Incr(ctx, "counter", time.Hour)
	assert.Equal(t, int64(4), n)

	c.t = c.t.Add(time.Minute)
	n, _ = s.Incr(ctx, "counter", time.Hour)
	assert.Equal(t, int64(1), n, "window restarts after expiry")
}

func TestMemoryStore_ConcurrentSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.SetNX(ctx, "once", time.Minute); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}
