package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/Notho-freedom/Autoresponder/internal/intake"
)

// implicitTLSPort is the SMTPS port; every other port upgrades with STARTTLS.
const implicitTLSPort = 465

// SMTPEmail sends HTML confirmations through an SMTP relay.
type SMTPEmail struct {
	host     string
	port     int
	username string
	password string
	from     mail.Address
	replyTo  string
	tpl      *Templates

	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	now  func() time.Time
}

// NewSMTPEmail builds the channel. The sender defaults to the username.
func NewSMTPEmail(host string, port int, username, password, senderEmail, senderName, replyTo string, tpl *Templates) *SMTPEmail {
	from := strings.TrimSpace(senderEmail)
	if from == "" {
		from = strings.TrimSpace(username)
	}
	d := &net.Dialer{}
	return &SMTPEmail{
		host:     strings.TrimSpace(host),
		port:     port,
		username: username,
		password: password,
		from:     mail.Address{Name: senderName, Address: from},
		replyTo:  strings.TrimSpace(replyTo),
		tpl:      tpl,
		dial:     d.DialContext,
		now:      time.Now,
	}
}

// Name implements Channel.
func (s *SMTPEmail) Name() string { return "email" }

func (s *SMTPEmail) configured() bool { return s.host != "" && s.from.Address != "" }

// SendConfirmation implements Channel. Success means the DATA command was
// accepted by the relay.
func (s *SMTPEmail) SendConfirmation(ctx context.Context, recipient, displayName string) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	display := intake.DisplayName(displayName, recipient)
	html, err := s.tpl.EmailHTML(display, recipient)
	if err != nil {
		return err
	}
	msg := s.buildMessage(mail.Address{Name: display, Address: recipient}, s.tpl.EmailSubject(display), html)

	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(s.from.Address); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp DATA end: %w", err)
	}
	return c.Quit()
}

// Ping implements Channel: connect, authenticate, NOOP, QUIT.
func (s *SMTPEmail) Ping(ctx context.Context) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *SMTPEmail) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsCfg := &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}
	if s.port == implicitTLSPort {
		conn = tls.Client(conn, tlsCfg)
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if s.port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				c.Close()
				return nil, fmt.Errorf("smtp STARTTLS: %w", err)
			}
		}
	}
	if s.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
				c.Close()
				return nil, fmt.Errorf("smtp AUTH: %w", err)
			}
		}
	}
	return c, nil
}

// buildMessage renders an RFC 5322 message with a base64 HTML body.
func (s *SMTPEmail) buildMessage(to mail.Address, subject, html string) []byte {
	var b bytes.Buffer
	hdr := func(k, v string) { b.WriteString(k + ": " + v + "\r\n") }
	hdr("From", s.from.String())
	hdr("To", to.String())
	if s.replyTo != "" {
		hdr("Reply-To", s.replyTo)
	}
	hdr("Subject", mime.QEncoding.Encode("utf-8", subject))
	hdr("Date", s.now().Format(time.RFC1123Z))
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", `text/html; charset="UTF-8"`)
	hdr("Content-Transfer-Encoding", "base64")
	b.WriteString("\r\n")

	enc := base64.StdEncoding.EncodeToString([]byte(html))
	for len(enc) > 76 {
		b.WriteString(enc[:76] + "\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc + "\r\n")
	return b.Bytes()
}
