package attendance

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a redemption was rejected.
type ErrorKind string

const (
	KindMalformedPayload        ErrorKind = "malformed_payload"
	KindSessionInvalidOrExpired ErrorKind = "session_invalid_or_expired"
	KindSignatureInvalid        ErrorKind = "signature_invalid"
	KindSessionExpired          ErrorKind = "session_expired"
	KindAlreadyRecorded         ErrorKind = "already_recorded"
	KindLocationOutOfRange      ErrorKind = "location_out_of_range"
	KindInvalidCoordinates      ErrorKind = "invalid_coordinates"
)

// RedemptionError is the typed rejection returned by RedeemSession. Every
// check either passes or short-circuits the pipeline with one of these;
// rejections are never process-level faults.
type RedemptionError struct {
	Kind   ErrorKind
	Detail string

	// DistanceKm is set for KindLocationOutOfRange.
	DistanceKm float64
}

func (e *RedemptionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func rejection(kind ErrorKind, format string, args ...any) *RedemptionError {
	return &RedemptionError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// AsRedemptionError unwraps err into a RedemptionError if it is one.
func AsRedemptionError(err error) (*RedemptionError, bool) {
	var re *RedemptionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
