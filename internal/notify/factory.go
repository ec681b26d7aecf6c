package notify

import (
	"context"

	"github.com/Notho-freedom/Autoresponder/internal/config"
)

// Disabled is the channel used when a provider is explicitly turned off.
type Disabled struct{ Kind string }

// Name implements Channel.
func (d Disabled) Name() string { return d.Kind }

// SendConfirmation implements Channel.
func (Disabled) SendConfirmation(context.Context, string, string) error { return ErrNotConfigured }

// Ping implements Channel.
func (Disabled) Ping(context.Context) error { return ErrNotConfigured }

// NewEmailChannel returns the email channel selected by cfg.EmailProvider.
func NewEmailChannel(cfg config.NotifyConfig, tpl *Templates) Channel {
	switch cfg.EmailProvider {
	case config.EmailBrevo:
		return NewBrevoEmail(cfg.Brevo.APIKey, cfg.Brevo.BaseURL, cfg.SenderEmail, cfg.SenderName, cfg.ReplyTo, cfg.Timeout, tpl)
	case config.EmailSMTP:
		return NewSMTPEmail(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SenderEmail, cfg.SenderName, cfg.ReplyTo, tpl)
	default:
		return Disabled{Kind: "email"}
	}
}

// NewSMSChannel returns the SMS channel selected by cfg.SMSProvider.
func NewSMSChannel(cfg config.NotifyConfig, tpl *Templates) Channel {
	switch cfg.SMSProvider {
	case config.SMSBrevo:
		return NewBrevoSMS(cfg.Brevo.APIKey, cfg.Brevo.BaseURL, cfg.Brevo.SMSSender, cfg.Timeout, tpl)
	case config.SMSTwilio:
		return NewTwilioSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, tpl)
	default:
		return Disabled{Kind: "sms"}
	}
}
