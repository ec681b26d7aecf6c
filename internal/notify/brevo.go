package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Notho-freedom/Autoresponder/internal/intake"
)

// brevoClient is the shared transport for Brevo's transactional APIs.
type brevoClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func newBrevoClient(apiKey, baseURL string, timeout time.Duration) *brevoClient {
	return &brevoClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeout),
	}
}

func (c *brevoClient) configured() bool { return c.apiKey != "" && c.baseURL != "" }

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// Non-2xx answers return a *rejectedError.
func (c *brevoClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &rejectedError{provider: "brevo", status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("brevo: decode response: %w", err)
	}
	return nil
}

// ping calls the account endpoint, which only needs a valid key.
func (c *brevoClient) ping(ctx context.Context) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	return c.do(ctx, http.MethodGet, "/account", nil, nil)
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmailRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	ReplyTo     *brevoContact  `json:"replyTo,omitempty"`
}

type brevoEmailResponse struct {
	MessageID string `json:"messageId"`
}

// BrevoEmail sends confirmations through Brevo's transactional email API.
type BrevoEmail struct {
	client  *brevoClient
	sender  brevoContact
	replyTo string
	tpl     *Templates
}

// NewBrevoEmail builds the channel. Missing key or sender leaves it unconfigured.
func NewBrevoEmail(apiKey, baseURL, senderEmail, senderName, replyTo string, timeout time.Duration, tpl *Templates) *BrevoEmail {
	return &BrevoEmail{
		client:  newBrevoClient(apiKey, baseURL, timeout),
		sender:  brevoContact{Email: strings.TrimSpace(senderEmail), Name: senderName},
		replyTo: strings.TrimSpace(replyTo),
		tpl:     tpl,
	}
}

// Name implements Channel.
func (b *BrevoEmail) Name() string { return "email" }

// SendConfirmation implements Channel. Acceptance requires a messageId.
func (b *BrevoEmail) SendConfirmation(ctx context.Context, recipient, displayName string) error {
	if !b.client.configured() || b.sender.Email == "" {
		return ErrNotConfigured
	}
	display := intake.DisplayName(displayName, recipient)
	html, err := b.tpl.EmailHTML(display, recipient)
	if err != nil {
		return err
	}
	req := brevoEmailRequest{
		Sender:      b.sender,
		To:          []brevoContact{{Email: recipient, Name: display}},
		Subject:     b.tpl.EmailSubject(display),
		HTMLContent: html,
	}
	if b.replyTo != "" {
		req.ReplyTo = &brevoContact{Email: b.replyTo}
	}

	var resp brevoEmailResponse
	if err := b.client.do(ctx, http.MethodPost, "/smtp/email", req, &resp); err != nil {
		return err
	}
	if resp.MessageID == "" {
		return fmt.Errorf("brevo: %w: missing messageId", ErrRejected)
	}
	return nil
}

// Ping implements Channel.
func (b *BrevoEmail) Ping(ctx context.Context) error { return b.client.ping(ctx) }

type brevoSMSRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	Type      string `json:"type"`
}

// BrevoSMS sends confirmations through Brevo's transactional SMS API.
type BrevoSMS struct {
	client *brevoClient
	sender string
	tpl    *Templates
}

// NewBrevoSMS builds the channel. sender is the alphanumeric sender id.
func NewBrevoSMS(apiKey, baseURL, sender string, timeout time.Duration, tpl *Templates) *BrevoSMS {
	return &BrevoSMS{client: newBrevoClient(apiKey, baseURL, timeout), sender: sender, tpl: tpl}
}

// Name implements Channel.
func (b *BrevoSMS) Name() string { return "sms" }

// SendConfirmation implements Channel. Brevo expects the number without '+'.
func (b *BrevoSMS) SendConfirmation(ctx context.Context, recipient, displayName string) error {
	if !b.client.configured() {
		return ErrNotConfigured
	}
	req := brevoSMSRequest{
		Sender:    b.sender,
		Recipient: strings.TrimPrefix(recipient, "+"),
		Content:   b.tpl.SMSText(displayName),
		Type:      "transactional",
	}
	return b.client.do(ctx, http.MethodPost, "/transactionalSMS/sms", req, nil)
}

// Ping implements Channel.
func (b *BrevoSMS) Ping(ctx context.Context) error { return b.client.ping(ctx) }
