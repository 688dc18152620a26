package ports

import "context"

// EventPublisher notifies other services about account activity
type EventPublisher interface {
	PublishRegistered(ctx context.Context, userID string, registrationType string) error
	PublishLogout(ctx context.Context, userID string, tokenID string) error
}
