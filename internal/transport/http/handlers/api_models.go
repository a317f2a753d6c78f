package handlers

import (
	"time"

	"github.com/edvana/school-platform-auth/internal/core/domain"
)

// LoginRequest carries credentials for POST /auth/login. Exactly one of
// email or phone identifies the account.
type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UserResponse is the redacted account representation returned to clients.
type UserResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	SchoolID  *string `json:"school_id,omitempty"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// LogoutResponse reports the revocation outcome.
type LogoutResponse struct {
	Message        string     `json:"message"`
	AlreadyExpired bool       `json:"already_expired"`
	RevokedUntil   *time.Time `json:"revoked_until,omitempty"`
}

// ValidateTokenRequest carries a token for POST /auth/validate.
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ValidateTokenResponse echoes the verified claims back to the caller.
type ValidateTokenResponse struct {
	Valid     bool      `json:"valid"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ForgotPasswordRequest identifies the account requesting a reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ForgotPasswordResponse reports where the code was sent and when it lapses.
type ForgotPasswordResponse struct {
	Message   string    `json:"message"`
	Delivery  string    `json:"delivery"`
	SentTo    string    `json:"sent_to,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetPasswordRequest carries the OTP-gated password rewrite.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Otp         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is a generic success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      string(user.Role),
		SchoolID:  user.SchoolID,
	}
}
