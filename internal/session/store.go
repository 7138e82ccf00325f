package session

import (
	"context"
	"time"
)

// Store is the registry of active sessions. A session is retrievable by ID
// exactly until it is deleted or swept; the sweep keeps sessions for a grace
// window past expiry so in-flight redemptions still observe them and get the
// specific "expired" rejection rather than "not found".
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error

	// Sweep removes every session with expiresAt + grace < now and reports
	// how many were removed. Backends that evict on their own may no-op.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
