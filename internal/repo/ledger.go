package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
)

var (
	// ErrNotFound indicates that no ledger entry exists for the fingerprint.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-key violation on insert.
	ErrDuplicate = errors.New("duplicate")
)

// GormLedger stores ledger entries in a SQL table keyed by fingerprint.
// Atomicity of InsertIfAbsent comes from the primary key, so it holds
// across processes sharing the same database.
type GormLedger struct {
	DB *gorm.DB
}

// NewGormLedger returns a ledger over db. The schema must be migrated.
func NewGormLedger(db *gorm.DB) *GormLedger { return &GormLedger{DB: db} }

// Exists reports whether an entry exists for fingerprint.
func (l *GormLedger) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var n int64
	err := l.DB.WithContext(ctx).
		Model(&domain.LedgerEntry{}).
		Where("fingerprint = ?", fingerprint).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// InsertIfAbsent inserts e unless its fingerprint is already recorded.
// It reports whether this call performed the insert.
func (l *GormLedger) InsertIfAbsent(ctx context.Context, e *domain.LedgerEntry) (bool, error) {
	res := l.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Get returns the entry for fingerprint or ErrNotFound.
func (l *GormLedger) Get(ctx context.Context, fingerprint string) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := l.DB.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns up to limit entries, newest first.
func (l *GormLedger) List(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := l.DB.WithContext(ctx).
		Order("recorded_at DESC").
		Order("fingerprint ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Stats aggregates channel outcomes over all entries in one query.
func (l *GormLedger) Stats(ctx context.Context) (domain.LedgerStats, error) {
	var row struct {
		Total     int64
		EmailSent int64
		SMSSent   int64 `gorm:"column:sms_sent"`
	}
	err := l.DB.WithContext(ctx).
		Model(&domain.LedgerEntry{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN sent_email THEN 1 ELSE 0 END), 0) AS email_sent, " +
			"COALESCE(SUM(CASE WHEN sent_sms THEN 1 ELSE 0 END), 0) AS sms_sent").
		Scan(&row).Error
	if err != nil {
		return domain.LedgerStats{}, err
	}
	return domain.NewLedgerStats(row.Total, row.EmailSent, row.SMSSent), nil
}

// Purge deletes the entry for fingerprint. It reports whether one existed.
func (l *GormLedger) Purge(ctx context.Context, fingerprint string) (bool, error) {
	res := l.DB.WithContext(ctx).Where("fingerprint = ?", fingerprint).Delete(&domain.LedgerEntry{})
	return res.RowsAffected > 0, res.Error
}

// Ping checks database connectivity.
func (l *GormLedger) Ping(ctx context.Context) error {
	sqlDB, err := l.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// isDuplicate recognizes unique violations across drivers. glebarez/sqlite
// often returns plain-text errors for UNIQUE violations.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
