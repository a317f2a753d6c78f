package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/core/domain"
	"github.com/edvana/school-platform-auth/internal/core/port"
	"github.com/edvana/school-platform-auth/internal/infra/logger"
	"github.com/edvana/school-platform-auth/internal/infra/security"
	"github.com/edvana/school-platform-auth/internal/repository"
)

const (
	otpKeyPrefix       = "otp:"
	blacklistKeyPrefix = "blacklist:"
	blacklistValue     = "true"
)

// LoginInput carries the credentials submitted at login. Exactly one of
// Email or Phone identifies the account; Email wins when both are present.
type LoginInput struct {
	Email    string
	Phone    string
	Password string
	IP       string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// LogoutResult reports the outcome of a logout request. AlreadyExpired means
// the token was genuine but past its lifetime, so there was nothing to revoke.
type LogoutResult struct {
	AlreadyExpired bool
	RevokedUntil   time.Time
}

// AuthService implements login, logout, and token validation.
type AuthService struct {
	users  port.UserRepository
	store  port.TTLStore
	tokens *security.TokenService
	events port.EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService wires the authentication service.
func NewAuthService(
	users port.UserRepository,
	store port.TTLStore,
	tokens *security.TokenService,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		store:  store,
		tokens: tokens,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Login verifies credentials and issues a fresh access token. Unknown
// accounts and wrong passwords both map to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Password == "" || (input.Email == "" && input.Phone == "") {
		return nil, ErrInvalidRequest
	}

	user, err := s.lookupUser(ctx, input.Email, input.Phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publishLoggedIn(ctx, user, input.IP)

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.Redacted(),
	}, nil
}

func (s *AuthService) lookupUser(ctx context.Context, email, phone string) (*domain.User, error) {
	if email != "" {
		return s.users.FindByEmail(ctx, email)
	}
	return s.users.FindByPhone(ctx, phone)
}

func (s *AuthService) publishLoggedIn(ctx context.Context, user *domain.User, ip string) {
	event := domain.UserLoggedInEvent{
		EventID: uuid.NewString(),
		UserID:  user.ID,
		Role:    user.Role,
		At:      s.now().UTC(),
	}
	if ip != "" {
		masked := logger.MaskIP(ip)
		event.IP = &masked
	}

	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		s.log.Warn("publish logged-in event failed", zap.Error(err), zap.String("user_id", user.ID))
	}
}

// Logout revokes the presented token for the remainder of its lifetime. A
// genuine but already expired token is reported via AlreadyExpired rather
// than as an error; a forged or malformed token is ErrInvalidToken.
func (s *AuthService) Logout(ctx context.Context, token string) (*LogoutResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidRequest
	}

	unsafeClaims, err := s.tokens.DecodeUnsafe(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(unsafeClaims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		// Expiry is only trusted when the signature checked out.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return &LogoutResult{AlreadyExpired: true}, nil
		}
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return &LogoutResult{AlreadyExpired: true}, nil
	}

	if err := s.store.Set(ctx, blacklistKeyPrefix+token, blacklistValue, remaining); err != nil {
		// The caller only sees the token-shaped failure; the backend error
		// stays in the logs.
		s.log.Error("write revocation entry failed",
			zap.Error(err),
			zap.String("user_id", unsafeClaims.Subject),
		)
		return nil, ErrInvalidToken
	}

	event := domain.UserLoggedOutEvent{
		EventID:      uuid.NewString(),
		UserID:       unsafeClaims.Subject,
		At:           s.now().UTC(),
		TokenExpires: claims.ExpiresAt.Time,
	}
	if err := s.events.PublishUserLoggedOut(ctx, event); err != nil {
		s.log.Warn("publish logged-out event failed", zap.Error(err), zap.String("user_id", event.UserID))
	}

	return &LogoutResult{RevokedUntil: claims.ExpiresAt.Time}, nil
}

// ValidateToken checks signature and expiry and returns the claims. It does
// not consult the revocation list; see IsRevoked for that.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*security.AccessTokenClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsRevoked reports whether the token is on the revocation list.
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := s.store.Get(ctx, blacklistKeyPrefix+token)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return true, nil
}
