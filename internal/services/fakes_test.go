package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/repo"
)

// ---------- fake ledger ----------

type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]domain.LedgerEntry

	existsErr error
	insertErr error
	listErr   error
	statsErr  error
	pingErr   error

	// existsHook runs before Exists answers; used to line up concurrent callers.
	existsHook func()
	inserts    atomic.Int32
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: map[string]domain.LedgerEntry{}}
}

func (f *fakeLedger) Exists(_ context.Context, fp string) (bool, error) {
	if f.existsHook != nil {
		f.existsHook()
	}
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[fp]
	return ok, nil
}

func (f *fakeLedger) InsertIfAbsent(_ context.Context, e *domain.LedgerEntry) (bool, error) {
	f.inserts.Add(1)
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[e.Fingerprint]; ok {
		return false, nil
	}
	f.entries[e.Fingerprint] = *e
	return true, nil
}

func (f *fakeLedger) Get(_ context.Context, fp string) (*domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[fp]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &e, nil
}

func (f *fakeLedger) List(_ context.Context, limit int) ([]domain.LedgerEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.LedgerEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLedger) Stats(_ context.Context) (domain.LedgerStats, error) {
	if f.statsErr != nil {
		return domain.LedgerStats{}, f.statsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var email, sms int64
	for _, e := range f.entries {
		if e.SentEmail {
			email++
		}
		if e.SentSMS {
			sms++
		}
	}
	return domain.NewLedgerStats(int64(len(f.entries)), email, sms), nil
}

func (f *fakeLedger) Purge(_ context.Context, fp string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[fp]; !ok {
		return false, nil
	}
	delete(f.entries, fp)
	return true, nil
}

func (f *fakeLedger) Ping(context.Context) error { return f.pingErr }

func (f *fakeLedger) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// ---------- fake channel ----------

type fakeChannel struct {
	name    string
	send    func(ctx context.Context, recipient, name string) error
	pingErr error

	calls atomic.Int32
	mu    sync.Mutex
	got   []string
}

func okChannel(name string) *fakeChannel { return &fakeChannel{name: name} }

func failingChannel(name string, err error) *fakeChannel {
	return &fakeChannel{name: name, send: func(context.Context, string, string) error { return err }}
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) SendConfirmation(ctx context.Context, recipient, name string) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.got = append(f.got, recipient)
	f.mu.Unlock()
	if f.send != nil {
		return f.send(ctx, recipient, name)
	}
	return nil
}

func (f *fakeChannel) Ping(context.Context) error { return f.pingErr }

var errBoom = errors.New("boom")
