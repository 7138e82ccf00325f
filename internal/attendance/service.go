package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qrpass/internal/geo"
	"qrpass/internal/metrics"
	"qrpass/internal/session"
	"qrpass/internal/token"
)

// QrPayload is the only session-derived data exposed to clients. The wire
// keys are single letters to keep the QR code small. The event type is
// deliberately absent: it is recovered from the server-side session after the
// signature and expiry checks pass, so it cannot be forged by editing the
// payload.
type QrPayload struct {
	SessionID string `json:"s"`
	ExpiresAt int64  `json:"e"` // epoch milliseconds
	Token     string `json:"t"`
}

// Evidence is what the student's device submits alongside the payload.
// IPAddress is injected by the transport and recorded as-is; it is not a
// verification input.
type Evidence struct {
	StudentID string    `json:"student_id"`
	DeviceID  string    `json:"device_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	Location  geo.Point `json:"location"`
}

// Record is the output of a successful redemption. Exactly one exists per
// (sessionID, deviceID) pair.
type Record struct {
	ID          string            `json:"id"`
	StudentID   string            `json:"student_id"`
	SessionID   string            `json:"session_id"`
	EventType   session.EventType `json:"event_type"`
	DeviceID    string            `json:"device_id"`
	IPAddress   string            `json:"ip_address,omitempty"`
	Location    geo.Point         `json:"location"`
	ConfirmedAt time.Time         `json:"confirmed_at"`
}

// RecordLog receives accepted attendance records.
type RecordLog interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, sessionID, deviceID string, limit, offset int) ([]Record, error)
}

// Service issues attendance sessions and verifies redemptions.
type Service struct {
	store   session.Store
	guard   session.ReplayGuard
	signer  *token.Signer
	fence   geo.Fence
	grace   time.Duration
	records RecordLog
	now     func() time.Time
}

// NewService wires the verification pipeline. records may be nil when
// accepted redemptions need no retention beyond the caller's response.
func NewService(store session.Store, guard session.ReplayGuard, signer *token.Signer, fence geo.Fence, grace time.Duration, records RecordLog) *Service {
	return &Service{
		store:   store,
		guard:   guard,
		signer:  signer,
		fence:   fence,
		grace:   grace,
		records: records,
		now:     time.Now,
	}
}

// IssueSession creates a session valid for ttl and returns its QR payload.
func (s *Service) IssueSession(ctx context.Context, eventType session.EventType, ttl time.Duration) (QrPayload, error) {
	if !eventType.Valid() {
		return QrPayload{}, fmt.Errorf("unknown event type %q", eventType)
	}
	if ttl <= 0 {
		return QrPayload{}, errors.New("ttl must be positive")
	}

	now := s.now()
	sess := session.Session{
		ID:        uuid.NewString(),
		EventType: eventType,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	sess.Token = s.signer.Sign(sess.ID, sess.ExpiresAt)

	if err := s.store.Put(ctx, sess); err != nil {
		return QrPayload{}, fmt.Errorf("store session: %w", err)
	}
	metrics.SessionsIssued.Inc()

	return QrPayload{
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
		Token:     sess.Token,
	}, nil
}

// RedeemSession runs the five verification stages in order, short-circuiting
// on the first failure: existence, signature, expiration, replay, geofence.
// On success it records attendance using the session's event type, never
// anything the client supplied.
func (s *Service) RedeemSession(ctx context.Context, payload QrPayload, ev Evidence) (Record, error) {
	if err := validateShape(payload, ev); err != nil {
		return Record{}, s.reject(err)
	}

	// 1. Existence
	sess, err := s.store.Get(ctx, payload.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return Record{}, s.reject(rejection(KindSessionInvalidOrExpired,
			"invalid or expired session, scan a new QR code"))
	}
	if err != nil {
		return Record{}, fmt.Errorf("load session: %w", err)
	}

	// 2. Signature. The payload token, the stored token, and a token
	// recomputed over the payload's own fields must all agree, so editing any
	// payload byte is caught here.
	recomputed := s.signer.Sign(payload.SessionID, time.UnixMilli(payload.ExpiresAt))
	if !token.Equal(payload.Token, recomputed) || !token.Equal(payload.Token, sess.Token) {
		return Record{}, s.reject(rejection(KindSignatureInvalid,
			"QR signature is invalid, possible tampering"))
	}

	// 3. Expiration, against the server clock. An expired session observed
	// here is deleted eagerly rather than waiting for the sweep.
	now := s.now()
	if now.After(sess.ExpiresAt) {
		_ = s.store.Delete(ctx, sess.ID)
		return Record{}, s.reject(rejection(KindSessionExpired,
			"QR code has expired, ask for a new one"))
	}

	// 4. Replay. The mark lives as long as the session could still be
	// redeemed; after that the existence check rejects first anyway.
	retention := sess.ExpiresAt.Sub(now) + s.grace
	marked, err := s.guard.MarkIfAbsent(ctx, sess.ID, ev.DeviceID, retention)
	if err != nil {
		return Record{}, fmt.Errorf("replay guard: %w", err)
	}
	if !marked {
		return Record{}, s.reject(rejection(KindAlreadyRecorded,
			"attendance already marked for this session on this device"))
	}

	// 5. Geofence. A rejection here releases the replay mark so the device
	// can move into range and retry.
	res, err := s.fence.Validate(ev.Location)
	if err != nil {
		_ = s.guard.Release(ctx, sess.ID, ev.DeviceID)
		return Record{}, s.reject(rejection(KindInvalidCoordinates,
			"location evidence is malformed, re-acquire location"))
	}
	if !res.Within {
		_ = s.guard.Release(ctx, sess.ID, ev.DeviceID)
		rej := rejection(KindLocationOutOfRange,
			"too far from the reference point (%.2f km)", res.DistanceKm)
		rej.DistanceKm = res.DistanceKm
		return Record{}, s.reject(rej)
	}

	rec := Record{
		ID:          uuid.NewString(),
		StudentID:   ev.StudentID,
		SessionID:   sess.ID,
		EventType:   sess.EventType,
		DeviceID:    ev.DeviceID,
		IPAddress:   ev.IPAddress,
		Location:    ev.Location,
		ConfirmedAt: now,
	}
	if s.records != nil {
		if err := s.records.Append(ctx, rec); err != nil {
			return Record{}, fmt.Errorf("append record: %w", err)
		}
	}
	metrics.Redemptions.WithLabelValues("accepted").Inc()
	return rec, nil
}

// Records exposes the log for listing endpoints.
func (s *Service) Records() RecordLog { return s.records }

func (s *Service) reject(err *RedemptionError) error {
	metrics.Redemptions.WithLabelValues(string(err.Kind)).Inc()
	return err
}

// validateShape treats the payload as untrusted input regardless of what the
// scanning UI produced: all three fields plus the evidence identifiers must
// be present.
func validateShape(payload QrPayload, ev Evidence) *RedemptionError {
	switch {
	case payload.SessionID == "":
		return rejection(KindMalformedPayload, "payload session id missing")
	case payload.ExpiresAt <= 0:
		return rejection(KindMalformedPayload, "payload expiry missing")
	case payload.Token == "":
		return rejection(KindMalformedPayload, "payload token missing")
	case ev.DeviceID == "":
		return rejection(KindMalformedPayload, "device id missing")
	case ev.StudentID == "":
		return rejection(KindMalformedPayload, "student id missing")
	}
	return nil
}
