package services

import (
	"context"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
)

// Ledger is the durable per-fingerprint record of processed submissions.
// repo.GormLedger and repo.RedisLedger implement it.
//
// InsertIfAbsent must be atomic across processes: among concurrent callers
// with the same fingerprint exactly one observes true.
type Ledger interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	InsertIfAbsent(ctx context.Context, e *domain.LedgerEntry) (bool, error)
	Get(ctx context.Context, fingerprint string) (*domain.LedgerEntry, error)
	List(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	Stats(ctx context.Context) (domain.LedgerStats, error)
	Purge(ctx context.Context, fingerprint string) (bool, error)
	Ping(ctx context.Context) error
}
