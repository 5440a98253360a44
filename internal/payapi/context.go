package payapi

import "context"

type contextKey string

const idempotencyKey contextKey = "idempotencyKey"

// WithIdempotencyKey makes requests issued with the returned context carry an
// Idempotency-Key header.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey, key)
}

// IdempotencyKey returns the key set by WithIdempotencyKey, or "".
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey).(string)
	return key
}
