package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/intake"
	"github.com/Notho-freedom/Autoresponder/internal/repo"
)

// ResponseService exposes ledger read-back and administrative purge.
type ResponseService struct {
	Ledger Ledger
}

// List returns up to limit entries, newest first.
func (s *ResponseService) List(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	tr := otel.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "List", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	items, err := s.Ledger.List(ctx, limit)
	if err != nil {
		return nil, storageErr("list", err)
	}
	if items == nil {
		items = []domain.LedgerEntry{}
	}
	return items, nil
}

// Count returns the number of entries in the ledger.
func (s *ResponseService) Count(ctx context.Context) (int64, error) {
	tr := otel.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "Count")
	defer span.End()

	st, err := s.Ledger.Stats(ctx)
	if err != nil {
		return 0, storageErr("count", err)
	}
	return st.Total, nil
}

// Get returns one entry by response id.
func (s *ResponseService) Get(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	tr := otel.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("response.id", id)))
	defer span.End()

	id, err := checkResponseID(id)
	if err != nil {
		return nil, err
	}
	e, err := s.Ledger.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrResponseNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	return e, nil
}

// Purge deletes one entry so the same submission can be processed again.
func (s *ResponseService) Purge(ctx context.Context, id string) error {
	tr := otel.Tracer("services/ResponseService")
	ctx, span := tr.Start(ctx, "Purge", trace.WithAttributes(attribute.String("response.id", id)))
	defer span.End()

	id, err := checkResponseID(id)
	if err != nil {
		return err
	}
	ok, err := s.Ledger.Purge(ctx, id)
	if err != nil {
		return storageErr("purge", err)
	}
	if !ok {
		return ErrResponseNotFound
	}
	loggerFrom(ctx).Info().Str("response_id", id).Msg("response purged")
	return nil
}

// exportHeader is the first row of the XLSX export.
var exportHeader = []any{"Response ID", "Email", "Phone", "Email sent", "SMS sent", "Recorded at"}

// Export writes up to limit entries as an XLSX workbook to w.
func (s *ResponseService) Export(ctx context.Context, limit int, w io.Writer) error {
	items, err := s.List(ctx, limit)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Responses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, e := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Fingerprint, e.Email, e.Phone, e.SentEmail, e.SentSMS, e.RecordedAt.UTC().Format("2006-01-02 15:04:05")}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// checkResponseID lowercases id and rejects anything that is not a
// fingerprint-length hex string.
func checkResponseID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) != intake.FingerprintLen {
		return "", ErrInvalidResponseID
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", ErrInvalidResponseID
		}
	}
	return id, nil
}
