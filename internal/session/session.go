package session

import (
	"errors"
	"time"
)

// EventType classifies an attendance session.
type EventType string

const (
	EventEntry EventType = "ENTRY"
	EventExit  EventType = "EXIT"
)

// Valid reports whether the event type is one of the known values.
func (e EventType) Valid() bool { return e == EventEntry || e == EventExit }

// Session is the server-side record behind one QR code. It is immutable after
// issuance and never exposed to clients in full.
type Session struct {
	ID        string    `json:"id"`
	EventType EventType `json:"event_type"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

var (
	// ErrDuplicateID is returned by Put when the session ID is already present.
	ErrDuplicateID = errors.New("session: duplicate id")
	// ErrNotFound is returned by Get when no session has the given ID.
	ErrNotFound = errors.New("session: not found")
)
