// Package notify implements the confirmation channels (email and SMS) and
// the templates they send.
//
// Every Channel reports failures as errors and never panics outward. A
// channel built without credentials stays usable: each call returns
// ErrNotConfigured, so the dispatcher can run in degraded mode.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured means the provider has no usable credentials.
	ErrNotConfigured = errors.New("channel not configured")
	// ErrRejected means the provider answered but did not accept the message.
	ErrRejected = errors.New("rejected by provider")
)

// Channel delivers a confirmation to one recipient.
//
// SendConfirmation returns nil only once the provider accepted the message
// for delivery. Ping is a non-mutating credential/reachability probe.
// Both must honor ctx.
type Channel interface {
	Name() string
	SendConfirmation(ctx context.Context, recipient, displayName string) error
	Ping(ctx context.Context) error
}

// rejectedError wraps ErrRejected with the provider's status.
type rejectedError struct {
	provider string
	status   int
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.provider, ErrRejected, e.status)
}

func (e *rejectedError) Unwrap() error { return ErrRejected }

// newHTTPClient returns the client shared by a provider's calls. The
// per-call deadline comes from ctx; timeout is a backstop.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
