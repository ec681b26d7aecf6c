package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// twilioAPI is the subset of the Twilio REST API the channel uses.
type twilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	FetchAccount(sid string) (*twilioApi.ApiV2010Account, error)
}

// TwilioSMS sends confirmations through Twilio Programmable Messaging.
type TwilioSMS struct {
	api        twilioAPI
	accountSID string
	from       string
	tpl        *Templates
}

// NewTwilioSMS builds the channel. Missing credentials leave it unconfigured.
func NewTwilioSMS(accountSID, authToken, fromNumber string, tpl *Templates) *TwilioSMS {
	t := &TwilioSMS{
		accountSID: strings.TrimSpace(accountSID),
		from:       strings.TrimSpace(fromNumber),
		tpl:        tpl,
	}
	if t.accountSID != "" && authToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: t.accountSID,
			Password: authToken,
		})
		t.api = client.Api
	}
	return t
}

// Name implements Channel.
func (t *TwilioSMS) Name() string { return "sms" }

func (t *TwilioSMS) configured() bool { return t.api != nil && t.from != "" }

// SendConfirmation implements Channel. Queued, sending, sent and delivered
// all count as accepted.
func (t *TwilioSMS) SendConfirmation(ctx context.Context, recipient, displayName string) error {
	if !t.configured() {
		return ErrNotConfigured
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(t.from)
	params.SetBody(t.tpl.SMSText(displayName))

	msg, err := withContext(ctx, func() (*twilioApi.ApiV2010Message, error) {
		return t.api.CreateMessage(params)
	})
	if err != nil {
		return err
	}
	status := ""
	if msg != nil && msg.Status != nil {
		status = *msg.Status
	}
	switch status {
	case "accepted", "scheduled", "queued", "sending", "sent", "delivered":
		return nil
	default:
		return fmt.Errorf("twilio: %w: status %q", ErrRejected, status)
	}
}

// Ping implements Channel by fetching the account resource.
func (t *TwilioSMS) Ping(ctx context.Context) error {
	if t.api == nil {
		return ErrNotConfigured
	}
	acct, err := withContext(ctx, func() (*twilioApi.ApiV2010Account, error) {
		return t.api.FetchAccount(t.accountSID)
	})
	if err != nil {
		return err
	}
	if acct != nil && acct.Status != nil && *acct.Status != "active" {
		return fmt.Errorf("twilio: account %s", *acct.Status)
	}
	return nil
}

// withContext runs a blocking SDK call and gives up when ctx ends. The SDK
// call itself keeps running until its HTTP client returns.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- result{zero, fmt.Errorf("provider panic: %v", r)}
			}
		}()
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
