package port

import (
	"context"
	"time"
)

// TTLStore is a key-value store with per-entry expiry. It backs both OTP
// records and the token revocation set; single-key operations are atomic.
type TTLStore interface {
	// Set stores value under key, overwriting any previous entry, and arms
	// the expiry timer.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the stored value, or repository.ErrNotFound once the entry
	// expired or was never written.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes the entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
