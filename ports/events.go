package ports

import "context"

// EventPublisher publishes security events to notify other instances
type EventPublisher interface {
	PublishLogout(ctx context.Context, email string, tokenID string) error
	PublishLockout(ctx context.Context, identity string, retryAfterSeconds int) error
}
