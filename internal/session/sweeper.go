package session

import (
	"context"
	"log"
	"time"

	"qrpass/internal/metrics"
)

// Sweeper evicts expired sessions on a fixed schedule, independent of any
// particular session's TTL, so expiry is enforced even without new requests.
type Sweeper struct {
	store    Store
	interval time.Duration
	now      func() time.Time
}

// NewSweeper creates a sweeper. A nil clock uses time.Now.
func NewSweeper(store Store, interval time.Duration, now func() time.Time) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{store: store, interval: interval, now: now}
}

// Run sweeps until ctx is canceled. Backend errors are logged and never
// surfaced to in-flight requests.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := w.store.Sweep(ctx, w.now())
			if err != nil {
				log.Printf("session sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				metrics.SessionsSwept.Add(float64(removed))
			}
		}
	}
}
