package app

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

const qrTokenLength = 12

// newQRToken generates the opaque external lookup token printed into the
// ticket's QR code. It is deliberately short (12 hex chars) and is not the
// internal identifier; uniqueness is enforced by the store, and callers
// regenerate on collision rather than assuming collisions impossible.
func newQRToken() string {
	b := make([]byte, qrTokenLength/2)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// UUID-derived token rather than returning an empty key.
		return uuid.NewString()[:qrTokenLength]
	}
	return hex.EncodeToString(b)
}
