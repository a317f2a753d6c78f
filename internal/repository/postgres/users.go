package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	pgconn "github.com/jackc/pgx/v5/pgconn"

	"github.com/edvana/school-platform-auth/internal/core/domain"
	"github.com/edvana/school-platform-auth/internal/repository"
)

// querier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var userColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"phone",
	"password_hash",
	"role",
	"school_id",
	"created_at",
	"updated_at",
}

// UserRepository provides read and credential-update access to user accounts.
type UserRepository struct {
	db  querier
	sql sq.StatementBuilderType
}

// NewUserRepository constructs a Postgres-backed user repository.
func NewUserRepository(db querier) *UserRepository {
	return &UserRepository{
		db:  db,
		sql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindByEmail returns the user with the given email or repository.ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(ctx, sq.Eq{"email": email})
}

// FindByPhone returns the user with the given phone number or repository.ErrNotFound.
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findBy(ctx, sq.Eq{"phone": phone})
}

func (r *UserRepository) findBy(ctx context.Context, where sq.Eq) (*domain.User, error) {
	query, args, err := r.sql.
		Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var user domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.SchoolID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// UpdatePassword rewrites the stored password hash for the user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	query, args, err := r.sql.
		Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build password update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
