// Package kv — короткоживущие ключи с TTL: deny-list сессий, журнал
// использованных ссылок сброса и счётчики rate limit.
package kv

import (
	"context"
	"time"
)

type Store interface {
	// SetNX ставит ключ, если его нет. true — ключ поставлен этим вызовом.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Incr увеличивает счётчик; TTL выставляется при создании ключа.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
