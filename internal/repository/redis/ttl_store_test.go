package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/edvana/school-platform-auth/internal/repository"
)

func newTestStore(t *testing.T) (*TTLStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewTTLStore(client), mr
}

func TestTTLStoreSetGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "otp:user@example.com", "482913", 10*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "otp:user@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "482913" {
		t.Fatalf("got %q, want 482913", got)
	}

	ttl := mr.TTL("otp:user@example.com")
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestTTLStoreSetOverwritesValueAndTimer(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "otp:user@example.com", "111111", 10*time.Minute); err != nil {
		t.Fatalf("first set: %v", err)
	}
	mr.FastForward(9 * time.Minute)

	if err := store.Set(ctx, "otp:user@example.com", "222222", 10*time.Minute); err != nil {
		t.Fatalf("second set: %v", err)
	}
	mr.FastForward(9 * time.Minute)

	got, err := store.Get(ctx, "otp:user@example.com")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if got != "222222" {
		t.Fatalf("got %q, want latest value", got)
	}
}

func TestTTLStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "otp:nobody@example.com")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTTLStoreGetExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "blacklist:token", "true", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "blacklist:token")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after expiry", err)
	}
}

func TestTTLStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "otp:user@example.com", "482913", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(ctx, "otp:user@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "otp:user@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}

	// Deleting again must not fail.
	if err := store.Delete(ctx, "otp:user@example.com"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
}

func TestTTLStoreRejectsNonPositiveTTL(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Set(context.Background(), "otp:user@example.com", "482913", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
