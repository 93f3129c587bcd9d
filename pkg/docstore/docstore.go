package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/hikari-bot/backend/pkg/crypto"
	"github.com/hikari-bot/backend/pkg/xcontext"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrVersionConflict   = errors.New("version conflict")
	ErrConflictExhausted = errors.New("conflict retries exhausted")
)

// Document is a keyed, versioned value in the remote store. The version is
// assigned by the store on every write and must be supplied as a
// precondition of the next write; a stale version fails the write instead of
// silently overwriting a concurrent update.
type Document struct {
	Key     string
	Value   map[string]any
	Version string
}

type Client interface {
	// Get returns the document under key. An absent key yields ErrNotFound
	// together with a document whose Value is nil and whose Version
	// represents the absent state; that version is still a valid
	// CompareAndSwap precondition, so create races lose like update races.
	Get(ctx context.Context, key string) (*Document, error)

	// CompareAndSwap writes value under key only if the stored version
	// still matches expectedVersion, returning the new version on commit
	// and ErrVersionConflict otherwise.
	CompareAndSwap(ctx context.Context, key, expectedVersion string, value map[string]any) (string, error)

	// Delete removes the document under key with the same precondition
	// semantics as CompareAndSwap.
	Delete(ctx context.Context, key, expectedVersion string) error
}

const DefaultMaxAttempts = 4

// Mutate runs the optimistic read-compute-swap loop: read the current value
// and version, derive the new value with fn, and write it conditioned on the
// version. On a conflict the loop re-reads and retries with jittered backoff
// up to maxAttempts times, then surfaces ErrConflictExhausted. fn receives
// nil for an absent document; returning nil deletes the document.
func Mutate(
	ctx context.Context,
	client Client,
	key string,
	maxAttempts int,
	fn func(value map[string]any) (map[string]any, error),
) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		doc, err := client.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		newValue, err := fn(doc.Value)
		if err != nil {
			return err
		}

		if newValue == nil {
			err = client.Delete(ctx, key, doc.Version)
		} else {
			_, err = client.CompareAndSwap(ctx, key, doc.Version, newValue)
		}

		if err == nil {
			return nil
		}

		if !errors.Is(err, ErrVersionConflict) {
			return err
		}

		if attempt >= maxAttempts {
			xcontext.Logger(ctx).Warnf("Gave up on key %s after %d conflicts", key, attempt)
			return ErrConflictExhausted
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(crypto.RandRange(5, 25)*attempt) * time.Millisecond):
		}
	}
}
