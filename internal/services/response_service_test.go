package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
)

func entryAt(fp string, at time.Time, email, sms bool) *domain.LedgerEntry {
	return &domain.LedgerEntry{Fingerprint: fp, Email: "a@b.com", Phone: "+33612345678", SentEmail: email, SentSMS: sms, RecordedAt: at}
}

func seededResponses(t *testing.T) (*ResponseService, *fakeLedger) {
	t.Helper()
	led := newFakeLedger()
	ctx := context.Background()
	_, _ = led.InsertIfAbsent(ctx, entryAt("aaaaaaaaaaaaaaaa", fixedNow.Add(-time.Hour), true, false))
	_, _ = led.InsertIfAbsent(ctx, entryAt("bbbbbbbbbbbbbbbb", fixedNow, true, true))
	return &ResponseService{Ledger: led}, led
}

func TestResponses_List(t *testing.T) {
	s, _ := seededResponses(t)
	items, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Fingerprint != "bbbbbbbbbbbbbbbb" {
		t.Fatalf("items = %+v", items)
	}
}

func TestResponses_List_EmptyIsNotNil(t *testing.T) {
	s := &ResponseService{Ledger: newFakeLedger()}
	items, err := s.List(context.Background(), 10)
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("List(empty) = (%v, %v)", items, err)
	}
}

func TestResponses_List_StorageError(t *testing.T) {
	led := newFakeLedger()
	led.listErr = errBoom
	s := &ResponseService{Ledger: led}
	_, err := s.List(context.Background(), 10)
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "list" {
		t.Fatalf("want StorageError(list), got %v", err)
	}
}

func TestResponses_Count(t *testing.T) {
	s, led := seededResponses(t)
	n, err := s.Count(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Count = (%d, %v)", n, err)
	}
	items, _ := s.List(context.Background(), 1)
	if len(items) != 1 {
		t.Fatalf("page = %d entries", len(items))
	}

	led.statsErr = errBoom
	_, err = s.Count(context.Background())
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "count" {
		t.Fatalf("want StorageError(count), got %v", err)
	}
}

func TestResponses_Get(t *testing.T) {
	s, _ := seededResponses(t)
	ctx := context.Background()

	e, err := s.Get(ctx, "AAAAAAAAAAAAAAAA")
	if err != nil || e.Fingerprint != "aaaaaaaaaaaaaaaa" {
		t.Fatalf("Get(upper) = (%+v, %v)", e, err)
	}
	if _, err := s.Get(ctx, "cccccccccccccccc"); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("want ErrResponseNotFound, got %v", err)
	}
	for _, bad := range []string{"", "abc", "zzzzzzzzzzzzzzzz", "aaaaaaaaaaaaaaaaa"} {
		if _, err := s.Get(ctx, bad); !errors.Is(err, ErrInvalidResponseID) {
			t.Fatalf("Get(%q): want ErrInvalidResponseID, got %v", bad, err)
		}
	}
}

func TestResponses_Purge(t *testing.T) {
	s, led := seededResponses(t)
	ctx := context.Background()

	if err := s.Purge(ctx, "aaaaaaaaaaaaaaaa"); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if led.len() != 1 {
		t.Fatalf("entries = %d", led.len())
	}
	if err := s.Purge(ctx, "aaaaaaaaaaaaaaaa"); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("second purge: want ErrResponseNotFound, got %v", err)
	}
}

func TestResponses_Export(t *testing.T) {
	s, _ := seededResponses(t)
	var buf bytes.Buffer
	if err := s.Export(context.Background(), 10, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Responses")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d; want header + 2", len(rows))
	}
	if rows[0][0] != "Response ID" || rows[1][0] != "bbbbbbbbbbbbbbbb" {
		t.Fatalf("rows = %v", rows)
	}
}
