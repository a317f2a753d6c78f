package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edvana/school-platform-auth/internal/core/domain"
	"github.com/edvana/school-platform-auth/internal/infra/security"
)

const testPassword = "correct horse battery staple"

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type authFixture struct {
	svc    *AuthService
	users  *mockUserRepo
	store  *memStore
	events *mockEvents
	clock  *fakeClock
	tokens *security.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clock := newFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	tokens, err := security.NewTokenService("test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	tokens.WithClock(clock.Now)

	phone := "+15550100"
	users := &mockUserRepo{users: []domain.User{{
		ID:           "user-1",
		FirstName:    "Dana",
		LastName:     "Reyes",
		Email:        "dana.reyes@example.com",
		Phone:        &phone,
		PasswordHash: hashFor(t, testPassword),
		Role:         domain.RoleTeacher,
	}}}

	store := newMemStore(clock)
	events := &mockEvents{}

	svc := NewAuthService(users, store, tokens, events, testLogger()).WithClock(clock.Now)

	return &authFixture{svc: svc, users: users, store: store, events: events, clock: clock, tokens: tokens}
}

func TestLoginWithEmail(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "dana.reyes@example.com",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := f.tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject %q, want user-1", claims.Subject)
	}
	if claims.Email != "dana.reyes@example.com" || claims.Role != domain.RoleTeacher {
		t.Fatalf("unexpected claims %+v", claims)
	}

	wantExpiry := f.clock.Now().Add(24 * time.Hour)
	if !result.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expires at %v, want %v", result.ExpiresAt, wantExpiry)
	}

	if result.User.PasswordHash != "" {
		t.Fatal("password hash leaked in login result")
	}
	if len(f.events.loggedIn) != 1 {
		t.Fatalf("logged-in events %d, want 1", len(f.events.loggedIn))
	}
}

func TestLoginWithPhone(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Phone:    "+15550100",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("login by phone: %v", err)
	}

	claims, err := f.tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Phone != "+15550100" {
		t.Fatalf("phone claim %q, want +15550100", claims.Phone)
	}
}

func TestLoginMissingFields(t *testing.T) {
	f := newAuthFixture(t)

	cases := []LoginInput{
		{Password: testPassword},
		{Email: "dana.reyes@example.com"},
		{},
	}
	for _, input := range cases {
		if _, err := f.svc.Login(context.Background(), input); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("input %+v: got %v, want ErrInvalidRequest", input, err)
		}
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: testPassword,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "dana.reyes@example.com",
		Password: "not the password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLogoutRevokesForRemainingLifetime(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(6 * time.Hour)

	result, err := f.svc.Logout(ctx, login.Token)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if result.AlreadyExpired {
		t.Fatal("fresh token reported as already expired")
	}
	if !result.RevokedUntil.Equal(login.ExpiresAt) {
		t.Fatalf("revoked until %v, want %v", result.RevokedUntil, login.ExpiresAt)
	}

	ttl, ok := f.store.ttlOf("blacklist:" + login.Token)
	if !ok {
		t.Fatal("no revocation entry written")
	}
	if ttl != 18*time.Hour {
		t.Fatalf("revocation ttl %v, want 18h", ttl)
	}
	if len(f.events.loggedOut) != 1 {
		t.Fatalf("logged-out events %d, want 1", len(f.events.loggedOut))
	}
}

func TestLogoutExpiredTokenIsNotAnError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(25 * time.Hour)

	result, err := f.svc.Logout(ctx, login.Token)
	if err != nil {
		t.Fatalf("logout of expired token: %v", err)
	}
	if !result.AlreadyExpired {
		t.Fatal("expected AlreadyExpired for lapsed token")
	}
	if _, ok := f.store.ttlOf("blacklist:" + login.Token); ok {
		t.Fatal("expired token should not be written to the revocation list")
	}
}

func TestLogoutRejectsForgedToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	other, err := security.NewTokenService("attacker-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	forged, _, err := other.Issue(domain.User{ID: "user-1", Email: "dana.reyes@example.com", Role: domain.RoleTeacher})
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	if _, err := f.svc.Logout(ctx, forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
	if _, err := f.svc.Logout(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken for garbage input", err)
	}
	if _, err := f.svc.Logout(ctx, ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("got %v, want ErrInvalidRequest for empty token", err)
	}
}

func TestValidateTokenDoesNotConsultRevocationList(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Logout(ctx, login.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// Validation is signature and expiry only; revocation is a separate check.
	claims, err := f.svc.ValidateToken(ctx, login.Token)
	if err != nil {
		t.Fatalf("validate after logout: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject %q, want user-1", claims.Subject)
	}

	revoked, err := f.svc.IsRevoked(ctx, login.Token)
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("token should be on the revocation list")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(24*time.Hour + time.Second)

	if _, err := f.svc.ValidateToken(ctx, login.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken after expiry", err)
	}
}

func TestIsRevokedEntryLapsesWithToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Logout(ctx, login.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	f.clock.Advance(24*time.Hour + time.Second)

	revoked, err := f.svc.IsRevoked(ctx, login.Token)
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("revocation entry should expire with the token")
	}
}

func TestLogoutStoreFailureMapsToInvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.store.setErr = errors.New("connection refused")

	// Backend trouble while revoking is folded into the token-shaped error.
	if _, err := f.svc.Logout(ctx, login.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestLogoutTwiceSucceedsAndRefreshesEntry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, LoginInput{Email: "dana.reyes@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(time.Hour)
	if _, err := f.svc.Logout(ctx, login.Token); err != nil {
		t.Fatalf("first logout: %v", err)
	}

	f.clock.Advance(time.Hour)
	result, err := f.svc.Logout(ctx, login.Token)
	if err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if result.AlreadyExpired {
		t.Fatal("second logout of a live token reported as already expired")
	}

	ttl, ok := f.store.ttlOf("blacklist:" + login.Token)
	if !ok {
		t.Fatal("revocation entry missing after second logout")
	}
	if ttl != 22*time.Hour {
		t.Fatalf("revocation ttl %v, want 22h after refresh", ttl)
	}
	if len(f.events.loggedOut) != 2 {
		t.Fatalf("logged-out events %d, want 2", len(f.events.loggedOut))
	}
}

func TestLogoutRejectsTokenWithoutSubject(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	signNoSub := func(exp time.Time) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "dana.reyes@example.com",
			"role":  "teacher",
			"iat":   f.clock.Now().Unix(),
			"exp":   exp.Unix(),
		}).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return token
	}

	live := signNoSub(f.clock.Now().Add(time.Hour))
	if _, err := f.svc.Logout(ctx, live); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("live no-subject token: got %v, want ErrInvalidToken", err)
	}

	// Without a subject the token is invalid outright, never already-expired.
	expired := signNoSub(f.clock.Now().Add(-time.Hour))
	if _, err := f.svc.Logout(ctx, expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired no-subject token: got %v, want ErrInvalidToken", err)
	}
}
