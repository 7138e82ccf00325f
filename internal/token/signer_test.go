package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignDeterministic(t *testing.T) {
	s := NewSigner([]byte("test-secret"), 16)
	expiry := time.UnixMilli(1700000000000)

	first := s.Sign("session-1", expiry)
	second := s.Sign("session-1", expiry)
	assert.Equal(t, first, second)
	assert.Len(t, first, 16)

	// A second signer with the same config agrees.
	other := NewSigner([]byte("test-secret"), 16)
	assert.Equal(t, first, other.Sign("session-1", expiry))
}

func TestSignInputsChangeToken(t *testing.T) {
	s := NewSigner([]byte("test-secret"), 16)
	expiry := time.UnixMilli(1700000000000)

	base := s.Sign("session-1", expiry)
	assert.NotEqual(t, base, s.Sign("session-2", expiry))
	assert.NotEqual(t, base, s.Sign("session-1", expiry.Add(time.Millisecond)))

	// Different secret, different token.
	other := NewSigner([]byte("other-secret"), 16)
	assert.NotEqual(t, base, other.Sign("session-1", expiry))
}

func TestSignerLength(t *testing.T) {
	expiry := time.UnixMilli(1700000000000)

	assert.Len(t, NewSigner([]byte("k"), 32).Sign("s", expiry), 32)

	// Out-of-range lengths fall back to the default.
	assert.Len(t, NewSigner([]byte("k"), 0).Sign("s", expiry), DefaultLength)
	assert.Len(t, NewSigner([]byte("k"), 100).Sign("s", expiry), DefaultLength)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("abcdef", "abcdef"))
	assert.False(t, Equal("abcdef", "abcdeg"))
	assert.False(t, Equal("abcdef", "abcde"))
}
