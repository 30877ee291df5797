// Package mail sends catalog files as email attachments over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTP is a STARTTLS SMTP transport with PLAIN authentication. The
// caller's context bounds the dial and send, so a stuck server cannot
// block a request handler indefinitely.
type SMTP struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTP returns a transport for host:port authenticating as username.
func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{host: host, port: port, username: username, password: password}
}

// Send transmits one message with a single attachment to a single
// recipient. It returns the underlying transport error on failure.
func (s *SMTP) Send(ctx context.Context, from, to, subject, body, attachmentPath, displayName string) error {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	msg.AttachFile(attachmentPath, gomail.WithFileName(displayName))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("cannot create SMTP client for %s:%d: %w", s.host, s.port, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("SMTP send failed: %w", err)
	}
	return nil
}
