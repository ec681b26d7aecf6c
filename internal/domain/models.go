// Package domain defines the persistence model for processed form submissions
// and the small value types passed between intake, dispatch, and the ledger.
package domain

import (
	"math"
	"time"
)

// LedgerEntry records the first processing attempt of one submission.
// It is created once per fingerprint and never updated afterwards.
//
// Fields:
//   - Fingerprint: 16-hex identity of (email, phone, timestamp); primary key.
//   - Email / Phone: normalized recipient addresses.
//   - SentEmail / SentSMS: channel outcomes at first processing.
//   - RecordedAt: server-side write time (UTC).
type LedgerEntry struct {
	Fingerprint string    `json:"response_id" gorm:"type:varchar(64);primaryKey"`
	Email       string    `json:"email"       gorm:"type:varchar(320);not null"`
	Phone       string    `json:"phone"       gorm:"type:varchar(32);not null"`
	SentEmail   bool      `json:"sent_email"  gorm:"not null;default:false"`
	SentSMS     bool      `json:"sent_sms"    gorm:"column:sent_sms;not null;default:false"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"not null;index:idx_ledger_recorded"`
}

// TableName returns the database table name for LedgerEntry.
func (LedgerEntry) TableName() string { return "ledger_entries" }

// LedgerStats aggregates delivery outcomes across the whole ledger.
type LedgerStats struct {
	Total       int64   `json:"total_responses"`
	EmailSent   int64   `json:"emails_sent"`
	SMSSent     int64   `json:"sms_sent"`
	SuccessRate float64 `json:"success_rate"`
}

// NewLedgerStats computes the success rate for the given counters:
// 100 for an empty ledger, otherwise the share of successful sends over
// two attempts per entry, rounded to two decimals.
func NewLedgerStats(total, emailSent, smsSent int64) LedgerStats {
	st := LedgerStats{Total: total, EmailSent: emailSent, SMSSent: smsSent, SuccessRate: 100}
	if total > 0 {
		rate := float64(emailSent+smsSent) / float64(total*2) * 100
		st.SuccessRate = math.Round(rate*100) / 100
	}
	return st
}
