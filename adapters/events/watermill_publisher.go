package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gnoparus/pbtodo/ports"
	"github.com/google/uuid"
)

const (
	// LogoutTopic carries session terminations so other instances can
	// drop cached state for the refresh ID
	LogoutTopic = "pbtodo.auth.logout"

	// LockoutTopic carries rate-limiter blocks for audit trails and
	// alerting
	LockoutTopic = "pbtodo.auth.lockout"
)

// LogoutEvent represents a session termination
type LogoutEvent struct {
	Email   string `json:"email"`
	TokenID string `json:"token_id"`
}

// LockoutEvent represents an identity being blocked by the rate limiter
type LockoutEvent struct {
	Identity          string    `json:"identity"`
	RetryAfterSeconds int       `json:"retry_after_seconds"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, email string, tokenID string) error {
	return p.publish(LogoutTopic, tokenID, LogoutEvent{
		Email:   email,
		TokenID: tokenID,
	})
}

// PublishLockout publishes a lockout event
func (p *WatermillPublisher) PublishLockout(ctx context.Context, identity string, retryAfterSeconds int) error {
	return p.publish(LockoutTopic, uuid.NewString(), LockoutEvent{
		Identity:          identity,
		RetryAfterSeconds: retryAfterSeconds,
		OccurredAt:        time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic, msgID string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(msgID, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
