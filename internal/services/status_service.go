package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/notify"
)

// DefaultProbeTimeout bounds each reachability probe.
const DefaultProbeTimeout = 5 * time.Second

// StatusReport is the health snapshot behind GET /status.
type StatusReport struct {
	// Operational is true iff both channel probes succeeded.
	Operational bool
	Timestamp   time.Time
	Email       bool
	SMS         bool
	Database    bool
	// Stats is nil when the ledger could not be read.
	Stats *domain.LedgerStats
}

// StatusService probes the channels and the ledger.
type StatusService struct {
	Ledger       Ledger
	Email        notify.Channel
	SMS          notify.Channel
	ProbeTimeout time.Duration
	Now          func() time.Time
}

// Check runs all probes concurrently. Probe failures are reported as false,
// never as an error.
func (s *StatusService) Check(ctx context.Context) StatusReport {
	tr := otel.Tracer("services/StatusService")
	ctx, span := tr.Start(ctx, "Check")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, orDefault(s.ProbeTimeout, DefaultProbeTimeout))
	defer cancel()

	var rep StatusReport
	var g errgroup.Group
	g.Go(func() error {
		rep.Email = s.ping(ctx, s.Email, "email")
		return nil
	})
	g.Go(func() error {
		rep.SMS = s.ping(ctx, s.SMS, "sms")
		return nil
	})
	g.Go(func() error {
		if s.Ledger == nil {
			return nil
		}
		rep.Database = s.Ledger.Ping(ctx) == nil
		if !rep.Database {
			return nil
		}
		st, err := s.Ledger.Stats(ctx)
		if err != nil {
			loggerFrom(ctx).Warn().Err(storageErr("stats", err)).Msg("status: stats unavailable")
			return nil
		}
		rep.Stats = &st
		return nil
	})
	_ = g.Wait()

	rep.Operational = rep.Email && rep.SMS
	rep.Timestamp = time.Now().UTC()
	if s.Now != nil {
		rep.Timestamp = s.Now().UTC()
	}
	span.SetAttributes(
		attribute.Bool("status.email", rep.Email),
		attribute.Bool("status.sms", rep.SMS),
		attribute.Bool("status.database", rep.Database),
	)
	return rep
}

func (s *StatusService) ping(ctx context.Context, ch notify.Channel, kind string) bool {
	if ch == nil {
		return false
	}
	err := ch.Ping(ctx)
	if err != nil {
		loggerFrom(ctx).Debug().Err(err).Str("channel", kind).Msg("status: channel unreachable")
	}
	return err == nil
}
