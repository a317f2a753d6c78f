package port

import (
	"context"
	"time"

	"github.com/edvana/school-platform-auth/internal/core/domain"
)

// UserRepository exposes the credential store operations the lifecycle service needs.
// The wider platform owns the rest of the user CRUD surface.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
}
