package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/core/domain"
)

// Topic suffixes; the configured prefix (default "auth") is prepended.
const (
	topicUserLoggedIn           = "user.logged_in"
	topicUserLoggedOut          = "user.logged_out"
	topicPasswordResetRequested = "password.reset_requested"
	topicPasswordChanged        = "password.changed"
)

// EventPublisher serializes domain events to JSON and hands them to the
// async producer.
type EventPublisher struct {
	producer *Producer
	prefix   string
	log      *zap.Logger
}

// NewEventPublisher wires the event publisher onto an existing producer.
func NewEventPublisher(producer *Producer, prefix string, log *zap.Logger) *EventPublisher {
	if prefix == "" {
		prefix = "auth"
	}
	return &EventPublisher{
		producer: producer,
		prefix:   prefix,
		log:      log,
	}
}

func (p *EventPublisher) topic(suffix string) string {
	return p.prefix + "." + suffix
}

func (p *EventPublisher) publish(topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", topic, err)
	}
	p.producer.Publish(topic, key, payload)
	return nil
}

// PublishUserLoggedIn emits a login event keyed by user id.
func (p *EventPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	return p.publish(p.topic(topicUserLoggedIn), event.UserID, event)
}

// PublishUserLoggedOut emits a logout event keyed by user id.
func (p *EventPublisher) PublishUserLoggedOut(_ context.Context, event domain.UserLoggedOutEvent) error {
	return p.publish(p.topic(topicUserLoggedOut), event.UserID, event)
}

// PublishPasswordResetRequested emits a reset-requested event keyed by user id.
func (p *EventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	return p.publish(p.topic(topicPasswordResetRequested), event.UserID, event)
}

// PublishPasswordChanged emits a password-changed event keyed by user id.
func (p *EventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	return p.publish(p.topic(topicPasswordChanged), event.UserID, event)
}
