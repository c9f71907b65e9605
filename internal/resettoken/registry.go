package resettoken

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrNoPendingToken = errors.New("no pending reset token")
	ErrTokenExpired   = errors.New("reset token expired")
	ErrTokenMismatch  = errors.New("reset token mismatch")
)

// Entry is what the registry remembers per user: never the raw token,
// only its hash and the deadline.
type Entry struct {
	TokenHash string
	ExpiresAt time.Time
}

// Store keeps at most one pending entry per user id. A Put overwrites any
// prior entry for that user.
type Store interface {
	Put(ctx context.Context, userID string, e Entry) error
	Get(ctx context.Context, userID string) (Entry, bool, error)
	Delete(ctx context.Context, userID string) error
}

type Registry struct {
	store Store
	ttl   time.Duration
}

func NewRegistry(store Store, ttl time.Duration) *Registry {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	return &Registry{
		store: store,
		ttl:   ttl,
	}
}

// HashToken is the deterministic digest stored instead of the raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Request generates a fresh one-time token for the user, stores its hash and
// expiry, and returns the raw token for out-of-band delivery.

func (r *Registry) Request(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)

	_, err := rand.Read(buf)

	if err != nil {
		return "", err
	}

	raw := hex.EncodeToString(buf)

	e := Entry{
		TokenHash: HashToken(raw),
		ExpiresAt: time.Now().UTC().Add(r.ttl),
	}

	err = r.store.Put(ctx, userID, e)

	if err != nil {
		return "", err
	}

	return raw, nil
}

// Consume validates the presented raw token against the pending entry.
// The entry is deleted only on success, so a token can be used exactly once.
// A mismatch leaves the entry pending; a later correct attempt still works.

func (r *Registry) Consume(ctx context.Context, userID, raw string) error {
	e, ok, err := r.store.Get(ctx, userID)

	if err != nil {
		return err
	}

	if !ok {
		return ErrNoPendingToken
	}

	if time.Now().UTC().After(e.ExpiresAt) {
		return ErrTokenExpired
	}

	if HashToken(raw) != e.TokenHash {
		return ErrTokenMismatch
	}

	return r.store.Delete(ctx, userID)
}
