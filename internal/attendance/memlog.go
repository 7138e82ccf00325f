package attendance

import (
	"context"
	"sync"
)

// MemoryLog keeps accepted records in memory, newest first. It is the default
// RecordLog; the Postgres repository is an archive fed by the worker.
type MemoryLog struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryLog creates an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append stores a record.
func (l *MemoryLog) Append(_ context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, rec)
	return nil
}

// List returns records, newest first, with optional session/device filters.
func (l *MemoryLog) List(_ context.Context, sessionID, deviceID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Record
	skipped := 0
	for i := len(l.recs) - 1; i >= 0 && len(out) < limit; i-- {
		rec := l.recs[i]
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		if deviceID != "" && rec.DeviceID != deviceID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
