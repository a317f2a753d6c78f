package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/core/domain"
)

// StubEventPublisher logs events instead of publishing them. Used when no
// Kafka brokers are configured.
type StubEventPublisher struct {
	log *zap.Logger
}

// NewStubEventPublisher constructs a log-only publisher.
func NewStubEventPublisher(log *zap.Logger) *StubEventPublisher {
	return &StubEventPublisher{log: log}
}

func (p *StubEventPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.log.Debug("event (stub publisher)",
		zap.String("type", "user.logged_in"),
		zap.String("user_id", event.UserID),
	)
	return nil
}

func (p *StubEventPublisher) PublishUserLoggedOut(_ context.Context, event domain.UserLoggedOutEvent) error {
	p.log.Debug("event (stub publisher)",
		zap.String("type", "user.logged_out"),
		zap.String("user_id", event.UserID),
	)
	return nil
}

func (p *StubEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.log.Debug("event (stub publisher)",
		zap.String("type", "password.reset_requested"),
		zap.String("user_id", event.UserID),
	)
	return nil
}

func (p *StubEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.log.Debug("event (stub publisher)",
		zap.String("type", "password.changed"),
		zap.String("user_id", event.UserID),
	)
	return nil
}
