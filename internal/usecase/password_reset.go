package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/core/domain"
	"github.com/edvana/school-platform-auth/internal/core/port"
	"github.com/edvana/school-platform-auth/internal/infra/logger"
	"github.com/edvana/school-platform-auth/internal/infra/security"
	"github.com/edvana/school-platform-auth/internal/repository"
)

// ForgotPasswordInput identifies the account requesting a reset code.
type ForgotPasswordInput struct {
	Email string
	Phone string
}

// ForgotPasswordResult reports where the code went and when it lapses.
type ForgotPasswordResult struct {
	Delivery          string
	MaskedDestination string
	ExpiresAt         time.Time
}

// ResetPasswordInput carries the OTP-gated password rewrite request.
type ResetPasswordInput struct {
	Email       string
	Phone       string
	Otp         string
	NewPassword string
}

// PasswordResetService implements the OTP-gated password reset flow.
type PasswordResetService struct {
	users     port.UserRepository
	store     port.TTLStore
	notifier  port.Notifier
	events    port.EventPublisher
	validator *security.PasswordValidator
	otpTTL    time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewPasswordResetService wires the password reset service.
func NewPasswordResetService(
	users port.UserRepository,
	store port.TTLStore,
	notifier port.Notifier,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	otpTTL time.Duration,
	log *zap.Logger,
) *PasswordResetService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &PasswordResetService{
		users:     users,
		store:     store,
		notifier:  notifier,
		events:    events,
		validator: validator,
		otpTTL:    otpTTL,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *PasswordResetService) WithClock(clock func() time.Time) *PasswordResetService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// ForgotPassword generates a fresh one-time code for the account, stores it
// under the submitted identifier, and sends it out of band. A repeated
// request replaces the previous code and restarts its lifetime.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) (*ForgotPasswordResult, error) {
	identifier := resetIdentifier(input.Email, input.Phone)
	if identifier == "" {
		return nil, ErrInvalidRequest
	}

	user, err := s.lookupUser(ctx, input.Email, input.Phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	if err := s.store.Set(ctx, otpKeyPrefix+identifier, code, s.otpTTL); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	expiresAt := s.now().UTC().Add(s.otpTTL)
	result := s.deliverOTP(ctx, user, code, expiresAt)
	s.publishResetRequested(ctx, user, result, expiresAt)

	return result, nil
}

func (s *PasswordResetService) deliverOTP(ctx context.Context, user *domain.User, code string, expiresAt time.Time) *ForgotPasswordResult {
	result := &ForgotPasswordResult{ExpiresAt: expiresAt}

	if user.Email == "" {
		result.Delivery = "none"
		s.log.Warn("no delivery channel for reset code", zap.String("user_id", user.ID))
		return result
	}

	result.Delivery = "email"
	result.MaskedDestination = logger.MaskEmail(user.Email)

	msg := port.Notification{
		To:      user.Email,
		Subject: "Your password reset code",
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your password reset code is <strong>%s</strong>. It expires in %d minutes.</p><p>If you did not request this, you can ignore this message.</p>",
			user.FirstName, code, int(s.otpTTL.Minutes()),
		),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		// Delivery is best-effort; the code is already stored and usable.
		s.log.Warn("reset code delivery failed",
			zap.Error(err),
			zap.String("user_id", user.ID),
			zap.String("to", result.MaskedDestination),
		)
	}

	return result
}

func (s *PasswordResetService) publishResetRequested(ctx context.Context, user *domain.User, result *ForgotPasswordResult, expiresAt time.Time) {
	event := domain.PasswordResetRequestedEvent{
		EventID:           uuid.NewString(),
		UserID:            user.ID,
		RequestedAt:       s.now().UTC(),
		Delivery:          result.Delivery,
		MaskedDestination: result.MaskedDestination,
		ExpiresAt:         expiresAt,
	}
	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		s.log.Warn("publish reset-requested event failed", zap.Error(err), zap.String("user_id", user.ID))
	}
}

// ResetPassword rewrites the account password when the presented code matches
// the stored one. The code check runs before the account lookup, and the code
// entry is consumed on success.
func (s *PasswordResetService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	identifier := resetIdentifier(input.Email, input.Phone)
	if identifier == "" || input.Otp == "" || input.NewPassword == "" {
		return ErrInvalidRequest
	}

	key := otpKeyPrefix + identifier
	stored, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidOrExpiredOtp
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if stored != input.Otp {
		return ErrInvalidOrExpiredOtp
	}

	user, err := s.lookupUser(ctx, input.Email, input.Phone)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.validator.Validate(input.NewPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err)
	}

	hash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	changedAt := s.now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("consume otp failed", zap.Error(err), zap.String("user_id", user.ID))
	}

	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		ChangedAt: changedAt,
		Method:    "otp_reset",
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.log.Warn("publish password-changed event failed", zap.Error(err), zap.String("user_id", user.ID))
	}

	return nil
}

func (s *PasswordResetService) lookupUser(ctx context.Context, email, phone string) (*domain.User, error) {
	if strings.TrimSpace(email) != "" {
		return s.users.FindByEmail(ctx, strings.TrimSpace(email))
	}
	return s.users.FindByPhone(ctx, strings.TrimSpace(phone))
}

func resetIdentifier(email, phone string) string {
	if v := strings.TrimSpace(email); v != "" {
		return v
	}
	return strings.TrimSpace(phone)
}
