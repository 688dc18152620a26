package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/fidena/fidena/ports"
	"github.com/google/uuid"
)

const (
	TopicUserRegistered = "fidena.auth.user_registered"
	TopicLogout         = "fidena.auth.logout"
)

// RegisteredEvent is published after an account has been created
type RegisteredEvent struct {
	UserID           string    `json:"user_id"`
	RegistrationType string    `json:"registration_type"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// LogoutEvent represents a logout event
type LogoutEvent struct {
	UserID     string    `json:"user_id"`
	TokenID    string    `json:"token_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	now       func() time.Time
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// PublishRegistered publishes a user registration event
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, userID string, registrationType string) error {
	return p.publish(ctx, TopicUserRegistered, RegisteredEvent{
		UserID:           userID,
		RegistrationType: registrationType,
		OccurredAt:       p.now().UTC(),
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID string, tokenID string) error {
	return p.publish(ctx, TopicLogout, LogoutEvent{
		UserID:     userID,
		TokenID:    tokenID,
		OccurredAt: p.now().UTC(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	middleware.SetCorrelationID(uuid.NewString(), msg)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	return nil
}

// NopPublisher drops every event. Used when no broker is wired.
type NopPublisher struct{}

func (NopPublisher) PublishRegistered(context.Context, string, string) error { return nil }
func (NopPublisher) PublishLogout(context.Context, string, string) error     { return nil }

var _ ports.EventPublisher = NopPublisher{}
