package domain

import "time"

// UserLoggedInEvent is emitted after a successful credential check and token issuance.
type UserLoggedInEvent struct {
	EventID  string         `json:"event_id"`
	UserID   string         `json:"user_id"`
	Role     Role           `json:"role"`
	At       time.Time      `json:"at"`
	IP       *string        `json:"ip,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UserLoggedOutEvent is emitted when a bearer token is revoked at logout.
type UserLoggedOutEvent struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	At           time.Time `json:"at"`
	TokenExpires time.Time `json:"token_expires"`
}

// PasswordResetRequestedEvent is emitted when an OTP has been generated for an account.
type PasswordResetRequestedEvent struct {
	EventID           string    `json:"event_id"`
	UserID            string    `json:"user_id"`
	RequestedAt       time.Time `json:"requested_at"`
	Delivery          string    `json:"delivery"`
	MaskedDestination string    `json:"masked_destination"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// PasswordChangedEvent is emitted after a password has been rewritten via the reset flow.
type PasswordChangedEvent struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	ChangedAt time.Time `json:"changed_at"`
	Method    string    `json:"method"`
}
