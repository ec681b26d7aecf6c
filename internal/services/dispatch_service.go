// Package services – DispatchService
//
// DispatchService is the idempotent dispatch pipeline behind POST /receive.
// For one normalized submission it:
//
//  1. derives the fingerprint (response id),
//  2. refuses to continue when the duplicate check itself fails,
//  3. short-circuits with already_processed when the ledger has the id,
//  4. sends the email and SMS confirmations concurrently, each with its own
//     deadline and panic guard, so one channel never blocks the other,
//  5. records the outcome with InsertIfAbsent and reports ok or partial.
//
// Observability: Dispatch and each channel send run in their own spans;
// outcomes feed the autoresponder_* Prometheus collectors.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/intake"
	"github.com/Notho-freedom/Autoresponder/internal/notify"
)

// DispatchStatus is the outcome reported to the webhook caller.
type DispatchStatus string

const (
	StatusOK               DispatchStatus = "ok"
	StatusPartial          DispatchStatus = "partial"
	StatusAlreadyProcessed DispatchStatus = "already_processed"
)

const (
	// DefaultChannelTimeout bounds one channel send.
	DefaultChannelTimeout = 10 * time.Second
	// DefaultLedgerTimeout bounds one ledger call.
	DefaultLedgerTimeout = 10 * time.Second

	// WarningNotRecorded is attached to the report when the ledger write failed.
	WarningNotRecorded = "response could not be recorded"
)

var errChannelPanic = errors.New("channel panicked")

// DispatchReport describes what Dispatch did for one submission.
type DispatchReport struct {
	ResponseID string
	Status     DispatchStatus
	Email      domain.ChannelOutcome
	SMS        domain.ChannelOutcome
	// Recorded is true when this call wrote the ledger entry.
	Recorded  bool
	Warnings  []string
	Timestamp time.Time
}

// Errors returns the channel error messages in email, sms order.
func (r *DispatchReport) Errors() []string {
	var out []string
	for _, o := range []domain.ChannelOutcome{r.Email, r.SMS} {
		if o.Error != "" {
			out = append(out, o.Error)
		}
	}
	return out
}

// DispatchService coordinates the ledger and the two confirmation channels.
type DispatchService struct {
	Ledger Ledger
	Email  notify.Channel
	SMS    notify.Channel

	ChannelTimeout time.Duration
	LedgerTimeout  time.Duration

	// Now is the clock used for RecordedAt and report timestamps.
	Now func() time.Time
}

// Dispatch runs the pipeline for sub. The only error it returns is a
// *StorageError from the duplicate check; in that case no channel was
// invoked and the returned report carries only the response id.
func (s *DispatchService) Dispatch(ctx context.Context, sub domain.Submission) (*DispatchReport, error) {
	fp := intake.Fingerprint(sub.Email, sub.Phone, sub.Timestamp)

	tr := otel.Tracer("services/DispatchService")
	ctx, span := tr.Start(ctx, "Dispatch",
		trace.WithAttributes(attribute.String("response.id", fp)),
	)
	defer span.End()

	lg := loggerFrom(ctx).With().Str("response_id", fp).Logger()
	rep := &DispatchReport{ResponseID: fp}

	exists, err := s.exists(ctx, fp)
	if err != nil {
		dispatchTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate check failed")
		lg.Error().Err(err).Msg("duplicate check failed, refusing to send")
		return rep, storageErr("exists", err)
	}
	if exists {
		rep.Status = StatusAlreadyProcessed
		rep.Timestamp = s.now()
		dispatchTotal.WithLabelValues(string(rep.Status)).Inc()
		lg.Info().Msg("already processed")
		return rep, nil
	}

	// Sends are bounded by ChannelTimeout only: a client disconnect or server
	// shutdown must not abort a confirmation that is about to be recorded.
	sendCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rep.Email = s.send(sendCtx, s.Email, "email", "Email", sub.Email, sub.Name)
	}()
	go func() {
		defer wg.Done()
		rep.SMS = s.send(sendCtx, s.SMS, "sms", "SMS", sub.Phone, sub.Name)
	}()
	wg.Wait()

	rep.Status = StatusPartial
	if rep.Email.Succeeded && rep.SMS.Succeeded {
		rep.Status = StatusOK
	}

	entry := &domain.LedgerEntry{
		Fingerprint: fp,
		Email:       sub.Email,
		Phone:       sub.Phone,
		SentEmail:   rep.Email.Succeeded,
		SentSMS:     rep.SMS.Succeeded,
		RecordedAt:  s.now(),
	}
	inserted, err := s.insert(sendCtx, entry)
	switch {
	case err != nil:
		span.RecordError(err)
		lg.Error().Err(storageErr("insert", err)).Msg("ledger write failed, submission may be sent again")
		rep.Warnings = append(rep.Warnings, WarningNotRecorded)
	case !inserted:
		raceLost.Inc()
		lg.Warn().Msg("concurrent request recorded this response first")
	default:
		rep.Recorded = true
	}

	rep.Timestamp = s.now()
	span.SetAttributes(
		attribute.String("dispatch.status", string(rep.Status)),
		attribute.Bool("dispatch.email", rep.Email.Succeeded),
		attribute.Bool("dispatch.sms", rep.SMS.Succeeded),
	)
	dispatchTotal.WithLabelValues(string(rep.Status)).Inc()
	lg.Info().
		Str("status", string(rep.Status)).
		Bool("email", rep.Email.Succeeded).
		Bool("sms", rep.SMS.Succeeded).
		Bool("recorded", rep.Recorded).
		Msg("dispatched")
	return rep, nil
}

func (s *DispatchService) exists(ctx context.Context, fp string) (bool, error) {
	if s.Ledger == nil {
		return false, errors.New("no ledger configured")
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(s.LedgerTimeout, DefaultLedgerTimeout))
	defer cancel()
	return s.Ledger.Exists(ctx, fp)
}

func (s *DispatchService) insert(ctx context.Context, e *domain.LedgerEntry) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, orDefault(s.LedgerTimeout, DefaultLedgerTimeout))
	defer cancel()
	return s.Ledger.InsertIfAbsent(ctx, e)
}

// send invokes one channel and converts the result into a ChannelOutcome.
// label is the human-facing channel name used in error messages.
func (s *DispatchService) send(ctx context.Context, ch notify.Channel, kind, label, recipient, name string) domain.ChannelOutcome {
	lg := loggerFrom(ctx).With().Str("channel", kind).Logger()
	if ch == nil {
		channelSends.WithLabelValues(kind, "not_configured").Inc()
		return domain.ChannelOutcome{Error: label + " not configured"}
	}

	tr := otel.Tracer("services/DispatchService")
	ctx, span := tr.Start(ctx, "send", trace.WithAttributes(attribute.String("channel", kind)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, orDefault(s.ChannelTimeout, DefaultChannelTimeout))
	defer cancel()

	start := time.Now()
	err := invoke(ctx, ch, recipient, name)
	channelLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	out := domain.ChannelOutcome{Attempted: true}
	result := "success"
	switch {
	case err == nil:
		out.Succeeded = true
	case errors.Is(err, notify.ErrNotConfigured):
		out.Attempted = false
		out.Error = label + " not configured"
		result = "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		out.Error = label + " sending timed out"
		result = "timeout"
	default:
		out.Error = label + " sending failed"
		result = "failure"
	}
	channelSends.WithLabelValues(kind, result).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		ev := lg.Warn()
		if errors.Is(err, errChannelPanic) {
			ev = lg.Error()
		}
		ev.Err(err).Str("result", result).Msg("confirmation not sent")
	}
	return out
}

// invoke calls SendConfirmation on its own goroutine so a channel that
// ignores ctx or panics still yields a result by the deadline.
func invoke(ctx context.Context, ch notify.Channel, recipient, name string) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", errChannelPanic, r)
			}
		}()
		done <- ch.SendConfirmation(ctx, recipient, name)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DispatchService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// loggerFrom returns the request-scoped logger carried by ctx, or the
// global logger when none was attached.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
