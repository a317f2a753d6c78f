package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edvana/school-platform-auth/internal/core/domain"
)

// AccessTokenClaims carries the identity claims encoded into access tokens.
// Subject holds the user id.
type AccessTokenClaims struct {
	Email string      `json:"email,omitempty"`
	Phone string      `json:"phone,omitempty"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed bearer tokens. The signing
// secret is injected at construction so tests can run with distinct secrets.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService with the given secret and token lifetime.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token service: secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the internal clock, used in tests.
func (s *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// TTL reports the configured access token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs an access token for the user with the fixed lifetime.
func (s *TokenService) Issue(user domain.User) (string, *AccessTokenClaims, error) {
	if user.ID == "" {
		return "", nil, errors.New("token service: user id is required")
	}

	now := s.now().UTC()

	claims := &AccessTokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if user.Phone != nil {
		claims.Phone = *user.Phone
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, claims, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Expired tokens surface jwt.ErrTokenExpired via errors.Is.
func (s *TokenService) Verify(token string) (*AccessTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token service: token is required")
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if parsed == nil || !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, jwt.ErrTokenRequiredClaimMissing
	}
	// Handlers read iat/exp unconditionally; a signed token missing either is
	// not one this service issued.
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, jwt.ErrTokenRequiredClaimMissing
	}

	return claims, nil
}

// DecodeUnsafe parses the claims without verifying signature or expiry. It
// exists solely so logout can read sub/exp from a token that may already be
// expired; never use it to authenticate.
func (s *TokenService) DecodeUnsafe(token string) (*AccessTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token service: token is required")
	}

	claims := &AccessTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	return claims, nil
}
