package usecase

import "errors"

var (
	// ErrInvalidRequest indicates a structurally unusable request, such as a
	// missing identifier or empty password.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCredentials indicates a failed login. It deliberately does not
	// distinguish an unknown account from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotFound indicates no account matched the supplied identifier.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidOrExpiredOtp indicates the one-time code did not match or its
	// entry has expired.
	ErrInvalidOrExpiredOtp = errors.New("invalid or expired otp")

	// ErrInvalidToken indicates a token that is malformed or carries a bad
	// signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrWeakPassword indicates the proposed password failed the strength policy.
	ErrWeakPassword = errors.New("weak password")
)
