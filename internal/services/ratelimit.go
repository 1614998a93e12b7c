package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"microblog/internal/kv"
	"microblog/internal/logger"
)

// RateLimiter — счётчик с фиксированным окном поверх kv.Store.
type RateLimiter struct {
	store kv.Store
	now   func() time.Time
}

func NewRateLimiter(store kv.Store, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{store: store, now: now}
}

// Allow: ошибки хранилища не блокируют запрос (fail open), только логируются.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	bucket := l.now().UnixNano() / int64(window)
	k := "rl:" + key + ":" + strconv.FormatInt(bucket, 10)

	n, err := l.store.Incr(ctx, k, window)
	if err != nil {
		logger.WithCtx(ctx).Error("Не удалось проверить rate limit", zap.String("key", key), zap.Error(err))
		return true
	}
	return n <= int64(limit)
}
