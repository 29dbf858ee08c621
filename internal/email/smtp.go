package email

import (
	"context"
	"crypto/tls"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig holds the configuration for the SMTP email sender.
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	SkipTLSVerify bool
}

// SMTPSender implements BatchSender over a plain SMTP server. Each
// OpenBatch dials one connection and reuses it for every message in the
// batch, which is what bulk broadcasts want.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp: host is required")
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.SkipTLSVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	}
	return &SMTPSender{dialer: d}, nil
}

// Send dials, sends one message, and closes the connection.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	batch, err := s.OpenBatch(ctx)
	if err != nil {
		return err
	}
	defer batch.Close()
	return batch.Send(ctx, msg)
}

// OpenBatch dials the SMTP server once for a run of sends.
func (s *SMTPSender) OpenBatch(ctx context.Context) (Batch, error) {
	sc, err := s.dialer.Dial()
	if err != nil {
		return nil, fmt.Errorf("smtp: failed to connect: %w", err)
	}
	return &smtpBatch{conn: sc}, nil
}

type smtpBatch struct {
	conn gomail.SendCloser
}

func (b *smtpBatch) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}
	if err := gomail.Send(b.conn, m); err != nil {
		return fmt.Errorf("smtp: failed to send email: %w", err)
	}
	return nil
}

func (b *smtpBatch) Close() error {
	return b.conn.Close()
}
