package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
	"github.com/Notho-freedom/Autoresponder/internal/intake"
	"github.com/Notho-freedom/Autoresponder/internal/notify"
)

var fixedNow = time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

func sampleSubmission() domain.Submission {
	return domain.Submission{
		Email:     "a@b.com",
		Phone:     "+33612345678",
		Name:      "Alice",
		Timestamp: "2025-01-01T00:00:00Z",
	}
}

func newDispatcher(led *fakeLedger, email, sms notify.Channel) *DispatchService {
	return &DispatchService{
		Ledger: led,
		Email:  email,
		SMS:    sms,
		Now:    func() time.Time { return fixedNow },
	}
}

func TestDispatch_BothChannelsSucceed(t *testing.T) {
	led := newFakeLedger()
	email, sms := okChannel("email"), okChannel("sms")
	s := newDispatcher(led, email, sms)

	rep, err := s.Dispatch(context.Background(), sampleSubmission())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	wantID := intake.Fingerprint("a@b.com", "+33612345678", "2025-01-01T00:00:00Z")
	if rep.ResponseID != wantID {
		t.Fatalf("response id = %q; want %q", rep.ResponseID, wantID)
	}
	if rep.Status != StatusOK || !rep.Recorded || len(rep.Errors()) != 0 || len(rep.Warnings) != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if !rep.Timestamp.Equal(fixedNow) {
		t.Fatalf("timestamp = %v", rep.Timestamp)
	}
	if email.got[0] != "a@b.com" || sms.got[0] != "+33612345678" {
		t.Fatalf("recipients: email=%v sms=%v", email.got, sms.got)
	}

	e, err := led.Get(context.Background(), wantID)
	if err != nil {
		t.Fatalf("ledger entry missing: %v", err)
	}
	if !e.SentEmail || !e.SentSMS || !e.RecordedAt.Equal(fixedNow) {
		t.Fatalf("entry = %+v", e)
	}
}

func TestDispatch_Idempotent(t *testing.T) {
	led := newFakeLedger()
	email, sms := okChannel("email"), okChannel("sms")
	s := newDispatcher(led, email, sms)
	sub := sampleSubmission()

	first, err := s.Dispatch(context.Background(), sub)
	if err != nil || first.Status != StatusOK {
		t.Fatalf("first: %+v, %v", first, err)
	}
	second, err := s.Dispatch(context.Background(), sub)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Status != StatusAlreadyProcessed || second.ResponseID != first.ResponseID {
		t.Fatalf("second report = %+v", second)
	}
	if email.calls.Load() != 1 || sms.calls.Load() != 1 {
		t.Fatalf("channels invoked email=%d sms=%d; want 1 each", email.calls.Load(), sms.calls.Load())
	}
	if led.len() != 1 {
		t.Fatalf("ledger entries = %d", led.len())
	}
}

func TestDispatch_DifferentTimestampIsNewEvent(t *testing.T) {
	led := newFakeLedger()
	email := okChannel("email")
	s := newDispatcher(led, email, okChannel("sms"))

	sub := sampleSubmission()
	_, _ = s.Dispatch(context.Background(), sub)
	sub.Timestamp = "2025-01-02T00:00:00Z"
	rep, err := s.Dispatch(context.Background(), sub)
	if err != nil || rep.Status != StatusOK {
		t.Fatalf("second submission: %+v, %v", rep, err)
	}
	if email.calls.Load() != 2 || led.len() != 2 {
		t.Fatalf("calls=%d entries=%d", email.calls.Load(), led.len())
	}
}

func TestDispatch_ChannelIsolation(t *testing.T) {
	cases := []struct {
		name       string
		emailErr   error
		smsErr     error
		wantEmail  bool
		wantSMS    bool
		wantErrors []string
	}{
		{"email fails", errBoom, nil, false, true, []string{"Email sending failed"}},
		{"sms fails", nil, errBoom, true, false, []string{"SMS sending failed"}},
		{"both fail", errBoom, notify.ErrRejected, false, false, []string{"Email sending failed", "SMS sending failed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			led := newFakeLedger()
			email := &fakeChannel{name: "email", send: func(context.Context, string, string) error { return tc.emailErr }}
			sms := &fakeChannel{name: "sms", send: func(context.Context, string, string) error { return tc.smsErr }}
			s := newDispatcher(led, email, sms)

			rep, err := s.Dispatch(context.Background(), sampleSubmission())
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if email.calls.Load() != 1 || sms.calls.Load() != 1 {
				t.Fatalf("both channels must be invoked: email=%d sms=%d", email.calls.Load(), sms.calls.Load())
			}
			if rep.Status != StatusPartial {
				t.Fatalf("status = %q; want partial", rep.Status)
			}
			if rep.Email.Succeeded != tc.wantEmail || rep.SMS.Succeeded != tc.wantSMS {
				t.Fatalf("outcomes email=%+v sms=%+v", rep.Email, rep.SMS)
			}
			got := rep.Errors()
			if len(got) != len(tc.wantErrors) {
				t.Fatalf("errors = %v; want %v", got, tc.wantErrors)
			}
			for i := range got {
				if got[i] != tc.wantErrors[i] {
					t.Fatalf("errors = %v; want %v", got, tc.wantErrors)
				}
			}
			e, _ := led.Get(context.Background(), rep.ResponseID)
			if e == nil || e.SentEmail != tc.wantEmail || e.SentSMS != tc.wantSMS {
				t.Fatalf("entry = %+v", e)
			}
		})
	}
}

func TestDispatch_ChannelPanicIsContained(t *testing.T) {
	led := newFakeLedger()
	email := &fakeChannel{name: "email", send: func(context.Context, string, string) error { panic("provider exploded") }}
	sms := okChannel("sms")
	s := newDispatcher(led, email, sms)

	rep, err := s.Dispatch(context.Background(), sampleSubmission())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rep.Email.Succeeded || rep.Email.Error != "Email sending failed" || !rep.SMS.Succeeded {
		t.Fatalf("report = %+v", rep)
	}
	if !rep.Recorded {
		t.Fatalf("outcome must still be recorded")
	}
}

func TestDispatch_ChannelTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	led := newFakeLedger()
	// Ignores ctx on purpose; the dispatcher must still give up.
	slow := &fakeChannel{name: "sms", send: func(context.Context, string, string) error {
		<-release
		return nil
	}}
	s := newDispatcher(led, okChannel("email"), slow)
	s.ChannelTimeout = 20 * time.Millisecond

	start := time.Now()
	rep, err := s.Dispatch(context.Background(), sampleSubmission())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("dispatch did not honor the channel timeout")
	}
	if rep.SMS.Succeeded || rep.SMS.Error != "SMS sending timed out" || !rep.SMS.Attempted {
		t.Fatalf("sms outcome = %+v", rep.SMS)
	}
	if rep.Status != StatusPartial || !rep.Email.Succeeded {
		t.Fatalf("report = %+v", rep)
	}
}

func TestDispatch_ParentCancelDoesNotAbortSends(t *testing.T) {
	led := newFakeLedger()
	started := make(chan struct{})
	slow := &fakeChannel{name: "email", send: func(ctx context.Context, _, _ string) error {
		close(started)
		select {
		case <-time.After(100 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
	s := newDispatcher(led, slow, okChannel("sms"))
	s.ChannelTimeout = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	rep, err := s.Dispatch(ctx, sampleSubmission())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rep.Status != StatusOK || !rep.Email.Succeeded || !rep.Recorded {
		t.Fatalf("cancelled request must still complete its sends: %+v", rep)
	}
	e, err := led.Get(context.Background(), rep.ResponseID)
	if err != nil || !e.SentEmail || !e.SentSMS {
		t.Fatalf("entry = %+v, err=%v", e, err)
	}
}

func TestDispatch_NotConfiguredChannels(t *testing.T) {
	led := newFakeLedger()
	s := newDispatcher(led, notify.Disabled{Kind: "email"}, nil)

	rep, err := s.Dispatch(context.Background(), sampleSubmission())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rep.Email.Attempted || rep.Email.Error != "Email not configured" {
		t.Fatalf("email outcome = %+v", rep.Email)
	}
	if rep.SMS.Attempted || rep.SMS.Error != "SMS not configured" {
		t.Fatalf("sms outcome = %+v", rep.SMS)
	}
	if rep.Status != StatusPartial || !rep.Recorded {
		t.Fatalf("report = %+v", rep)
	}
}

func TestDispatch_DuplicateCheckFailureFailsClosed(t *testing.T) {
	led := newFakeLedger()
	led.existsErr = errBoom
	email, sms := okChannel("email"), okChannel("sms")
	s := newDispatcher(led, email, sms)

	rep, err := s.Dispatch(context.Background(), sampleSubmission())
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "exists" || !errors.Is(err, errBoom) {
		t.Fatalf("want StorageError(exists), got %v", err)
	}
	if rep == nil || rep.ResponseID == "" {
		t.Fatalf("report must carry the response id for correlation")
	}
	if email.calls.Load() != 0 || sms.calls.Load() != 0 || led.inserts.Load() != 0 {
		t.Fatalf("nothing may run after a failed duplicate check")
	}
}

func TestDispatch_LedgerWriteFailureIsReported(t *testing.T) {
	led := newFakeLedger()
	led.insertErr = errBoom
	s := newDispatcher(led, okChannel("email"), okChannel("sms"))

	rep, err := s.Dispatch(context.Background(), sampleSubmission())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rep.Status != StatusOK || rep.Recorded {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.Warnings) != 1 || rep.Warnings[0] != WarningNotRecorded {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
}

func TestDispatch_ConcurrentSameFingerprint(t *testing.T) {
	led := newFakeLedger()
	var arrived sync.WaitGroup
	arrived.Add(2)
	// Both requests pass the duplicate check before either records.
	led.existsHook = func() {
		arrived.Done()
		arrived.Wait()
	}
	s := newDispatcher(led, okChannel("email"), okChannel("sms"))
	before := testutil.ToFloat64(raceLost)

	var wg sync.WaitGroup
	reps := make([]*DispatchReport, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reps[i], errs[i] = s.Dispatch(context.Background(), sampleSubmission())
		}(i)
	}
	wg.Wait()

	recorded := 0
	for i := range reps {
		if errs[i] != nil {
			t.Fatalf("dispatch %d: %v", i, errs[i])
		}
		if len(reps[i].Warnings) != 0 {
			t.Fatalf("losing the race is not a persistence failure: %+v", reps[i])
		}
		if reps[i].Recorded {
			recorded++
		}
	}
	if recorded != 1 || led.len() != 1 {
		t.Fatalf("recorded=%d entries=%d; want exactly one", recorded, led.len())
	}
	if got := testutil.ToFloat64(raceLost) - before; got != 1 {
		t.Fatalf("race lost counter delta = %v", got)
	}
}

func TestDispatch_NoLedger(t *testing.T) {
	s := &DispatchService{Email: okChannel("email"), SMS: okChannel("sms")}
	if _, err := s.Dispatch(context.Background(), sampleSubmission()); err == nil {
		t.Fatalf("expected error without a ledger")
	}
}
