// HTTP handler wiring.
//
// Handlers are transport-thin: they read and validate input, call the
// application services, and translate results into HTTP responses. The
// services are consumed through the small interfaces below so tests can
// substitute fakes.
package handlers

import (
	"context"
	"io"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/services"
)

//
// Service contracts (context-aware)
//

// Normalizer turns a raw webhook body into a Submission.
type Normalizer interface {
	Normalize(raw []byte) (domain.Submission, error)
}

// Dispatcher runs the idempotent send-and-record pipeline for one submission.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub domain.Submission) (*services.DispatchReport, error)
}

// StatusChecker reports channel and ledger health.
type StatusChecker interface {
	Check(ctx context.Context) services.StatusReport
}

// ResponseStore is the administrative view of the ledger.
type ResponseStore interface {
	List(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id string) (*domain.LedgerEntry, error)
	Purge(ctx context.Context, id string) error
	Export(ctx context.Context, limit int, w io.Writer) error
}

// Options carries presentation settings that are not service dependencies.
type Options struct {
	ServiceName  string
	Version      string
	DefaultLimit int // ?limit= default for the admin listing
	MaxLimit     int // upper clamp for ?limit=
}

// Handlers groups the webhook, status, and admin endpoints.
type Handlers struct {
	norm      Normalizer
	dispatch  Dispatcher
	status    StatusChecker
	responses ResponseStore
	opts      Options
}

// New constructs Handlers bound to the given services. Zero option values
// fall back to sensible defaults.
func New(norm Normalizer, dispatch Dispatcher, status StatusChecker, responses ResponseStore, opts Options) *Handlers {
	if opts.ServiceName == "" {
		opts.ServiceName = "Form Autoresponder"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 100
	}
	return &Handlers{norm: norm, dispatch: dispatch, status: status, responses: responses, opts: opts}
}
