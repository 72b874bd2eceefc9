package ports

import (
	"context"
	"time"
)

// TokenStore tracks invalidated refresh-token IDs
type TokenStore interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
