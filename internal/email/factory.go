package email

import (
	"context"
	"fmt"

	"github.com/ticketmail/ticketmail/internal/config"
)

// NewFromConfig builds the configured email transport. An unknown or
// empty provider is an error; callers that want the server up anyway
// can fall back to Unavailable.
func NewFromConfig(ctx context.Context, cfg config.EmailConfig) (BatchSender, error) {
	switch cfg.Provider {
	case "smtp":
		s, err := NewSMTPSender(SMTPConfig{
			Host:          cfg.SMTP.Host,
			Port:          cfg.SMTP.Port,
			Username:      cfg.SMTP.Username,
			Password:      cfg.SMTP.Password,
			SkipTLSVerify: cfg.SMTP.SkipTLSVerify,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sendgrid":
		s, err := NewSendGridSender(cfg.SendGrid.APIKey)
		if err != nil {
			return nil, err
		}
		return AsBatchSender(s), nil
	case "gmail":
		s, err := NewGmailSender(ctx, GmailConfig{
			CredentialsJSON: cfg.Gmail.CredentialsJSON,
			ClientID:        cfg.Gmail.ClientID,
			ClientSecret:    cfg.Gmail.ClientSecret,
			RefreshToken:    cfg.Gmail.RefreshToken,
			SenderAddress:   cfg.SenderAddress,
		})
		if err != nil {
			return nil, err
		}
		return AsBatchSender(s), nil
	case "":
		return nil, fmt.Errorf("email: no provider configured")
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.Provider)
	}
}

// Unavailable returns a BatchSender whose every operation fails with
// the given reason. It lets the server start without a working mail
// transport; send endpoints surface the failure per request.
func Unavailable(reason error) BatchSender {
	return unavailableSender{reason: reason}
}

type unavailableSender struct {
	reason error
}

func (u unavailableSender) Send(ctx context.Context, msg Message) error {
	return u.reason
}

func (u unavailableSender) OpenBatch(ctx context.Context) (Batch, error) {
	return nil, u.reason
}
