package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/core/domain"
	"github.com/edvana/school-platform-auth/internal/core/port"
	"github.com/edvana/school-platform-auth/internal/repository"
)

// fakeClock is a manually advanced clock shared by services and the memory
// store so expiry behaves deterministically in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

// memStore is an in-memory port.TTLStore that expires entries against the
// fake clock.
type memStore struct {
	mu      sync.Mutex
	clock   *fakeClock
	entries map[string]memEntry

	setErr error
}

func newMemStore(clock *fakeClock) *memStore {
	return &memStore{
		clock:   clock,
		entries: make(map[string]memEntry),
	}
}

func (s *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	s.entries[key] = memEntry{value: value, expiresAt: s.clock.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", repository.ErrNotFound
	}
	return entry.value, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// ttlOf reports the remaining lifetime of an entry relative to the fake clock.
func (s *memStore) ttlOf(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return entry.expiresAt.Sub(s.clock.Now()), true
}

// mockUserRepo is a hand-rolled port.UserRepository backed by fixtures.
type mockUserRepo struct {
	users []domain.User

	updatedID   string
	updatedHash string
	updatedAt   time.Time
	updateErr   error
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	for i := range m.users {
		if m.users[i].Phone != nil && *m.users[i].Phone == phone {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedID = id
	m.updatedHash = passwordHash
	m.updatedAt = changedAt
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrNotFound
}

// mockNotifier records sends and optionally fails every delivery.
type mockNotifier struct {
	sent    []port.Notification
	sendErr error
}

func (m *mockNotifier) Send(_ context.Context, msg port.Notification) error {
	m.sent = append(m.sent, msg)
	return m.sendErr
}

// mockEvents counts published events per type.
type mockEvents struct {
	loggedIn        []domain.UserLoggedInEvent
	loggedOut       []domain.UserLoggedOutEvent
	resetRequested  []domain.PasswordResetRequestedEvent
	passwordChanged []domain.PasswordChangedEvent
}

func (m *mockEvents) PublishUserLoggedIn(_ context.Context, e domain.UserLoggedInEvent) error {
	m.loggedIn = append(m.loggedIn, e)
	return nil
}

func (m *mockEvents) PublishUserLoggedOut(_ context.Context, e domain.UserLoggedOutEvent) error {
	m.loggedOut = append(m.loggedOut, e)
	return nil
}

func (m *mockEvents) PublishPasswordResetRequested(_ context.Context, e domain.PasswordResetRequestedEvent) error {
	m.resetRequested = append(m.resetRequested, e)
	return nil
}

func (m *mockEvents) PublishPasswordChanged(_ context.Context, e domain.PasswordChangedEvent) error {
	m.passwordChanged = append(m.passwordChanged, e)
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
