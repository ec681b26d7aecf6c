// Package auth verifies the shared-secret bearer credential carried by
// webhook and admin requests.
package auth

import (
	"crypto/subtle"
	"strings"
)

// Gate checks Authorization headers against a configured secret.
// The zero value rejects every request.
type Gate struct {
	secret []byte
}

// NewGate returns a Gate for secret. An empty secret rejects everything.
func NewGate(secret string) Gate {
	return Gate{secret: []byte(secret)}
}

// Verify reports whether header has the form "Bearer <token>" (scheme
// matched case-insensitively) and token equals the secret.
func (g Gate) Verify(header string) bool {
	if len(g.secret) == 0 {
		return false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), g.secret) == 1
}
