// internal/reqctx/reqctx.go
package reqctx

import "context"

type key int

const (
	keyRequestID key = iota
	keyUserID
	keyAccessToken
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, keyUserID, id)
}

func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(keyUserID).(int64)
	return v, ok
}

// AccessToken — сырой токен текущего запроса и его срок; нужен для logout.
type AccessToken struct {
	Raw       string
	ExpiresAt int64
}

func WithAccessToken(ctx context.Context, t AccessToken) context.Context {
	return context.WithValue(ctx, keyAccessToken, t)
}

func GetAccessToken(ctx context.Context) (AccessToken, bool) {
	v, ok := ctx.Value(keyAccessToken).(AccessToken)
	return v, ok
}
