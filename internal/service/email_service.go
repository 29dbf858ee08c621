package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketmail/ticketmail/internal/email"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/newsletter"
	"github.com/ticketmail/ticketmail/internal/repository"
)

// emailStore is the persistence surface EmailService needs.
type emailStore interface {
	Create(ctx context.Context, email *model.Email) error
	GetByID(ctx context.Context, id int64, deviceID *string) (*model.Email, error)
	List(ctx context.Context, deviceID *string) ([]*model.Email, error)
	Update(ctx context.Context, id int64, deviceID *string, upd repository.EmailUpdate) (*model.Email, error)
	Delete(ctx context.Context, id int64, deviceID *string) error
}

// CreateEmailRequest is the payload for creating and sending one email.
// The render context comes from the optional newsletter fields; title
// and content default to subject and message.
type CreateEmailRequest struct {
	Recipient      string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	NewsletterType string `json:"newsletter_type"`
	Title          string `json:"newsletter_title"`
	Content        string `json:"newsletter_content"`
	HighlightText  string `json:"highlight_text"`
	CTAText        string `json:"cta_text"`
	CTAURL         string `json:"cta_url"`
	EventTitle     string `json:"event_title"`
	EventDate      string `json:"event_date"`
	EventTime      string `json:"event_time"`
	EventLocation  string `json:"event_location"`
}

// payload assembles the render context. Unlike broadcasts, single sends
// never carry JSON in the message body; everything is top-level fields.
func (r CreateEmailRequest) payload() newsletter.Payload {
	tmpl := newsletter.TemplateAnnouncement
	if r.NewsletterType == "event" {
		tmpl = newsletter.TemplateEvent
	}
	title := r.Title
	if title == "" {
		title = r.EventTitle
	}
	if title == "" {
		title = r.Subject
	}
	content := r.Content
	if content == "" {
		content = r.Message
	}
	return newsletter.Payload{
		Template:      tmpl,
		Title:         title,
		Content:       content,
		HighlightText: r.HighlightText,
		CTAText:       r.CTAText,
		CTAURL:        r.CTAURL,
		EventDate:     r.EventDate,
		EventTime:     r.EventTime,
		EventLocation: r.EventLocation,
	}
}

// UpdateEmailRequest is the payload for a partial email update.
type UpdateEmailRequest struct {
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}

// EmailService stores individual emails and sends them as newsletters.
type EmailService struct {
	emails   emailStore
	sender   email.Sender
	renderer *newsletter.Renderer

	senderAddress string
	senderName    string
	log           *logger.Logger
}

// NewEmailService creates a new EmailService.
func NewEmailService(emails emailStore, sender email.Sender, renderer *newsletter.Renderer, senderAddress, senderName string, log *logger.Logger) *EmailService {
	return &EmailService{
		emails:        emails,
		sender:        sender,
		renderer:      renderer,
		senderAddress: senderAddress,
		senderName:    senderName,
		log:           log.WithComponent("email"),
	}
}

// CreateAndSend stores the email record, then renders and sends it to
// the one recipient. The record is persisted before the send attempt,
// so it survives a delivery failure.
func (s *EmailService) CreateAndSend(ctx context.Context, req CreateEmailRequest, deviceID *string) (*model.Email, error) {
	if req.Recipient == "" {
		return nil, fmt.Errorf("%w: email field is required", ErrValidation)
	}
	if req.Subject == "" {
		return nil, fmt.Errorf("%w: subject field is required", ErrValidation)
	}

	rec := &model.Email{
		DeviceID:  deviceID,
		Subject:   req.Subject,
		Message:   req.Message,
		Recipient: req.Recipient,
	}
	if err := s.emails.Create(ctx, rec); err != nil {
		return nil, err
	}

	payload := req.payload()
	year := time.Now().Year()
	msg := email.Message{
		From:     newsletter.FormatFrom(s.senderName, s.senderAddress),
		To:       req.Recipient,
		Subject:  req.Subject,
		HTMLBody: s.renderer.RenderHTML(payload, req.Recipient, year),
		TextBody: s.renderer.PlainText(payload, s.senderName, year),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("email", req.Recipient).Int64("id", rec.ID).Msg("send failed")
		return rec, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	s.log.Info().Str("email", req.Recipient).Int64("id", rec.ID).Msg("email sent")
	return rec, nil
}

// List returns stored emails, most recently edited first.
func (s *EmailService) List(ctx context.Context, deviceID *string) ([]*model.Email, error) {
	return s.emails.List(ctx, deviceID)
}

// Get returns one stored email.
func (s *EmailService) Get(ctx context.Context, id int64, deviceID *string) (*model.Email, error) {
	return s.emails.GetByID(ctx, id, deviceID)
}

// Update applies a partial update to a stored email.
func (s *EmailService) Update(ctx context.Context, id int64, deviceID *string, req UpdateEmailRequest) (*model.Email, error) {
	if req.Subject == nil && req.Message == nil {
		return s.emails.GetByID(ctx, id, deviceID)
	}
	return s.emails.Update(ctx, id, deviceID, repository.EmailUpdate{
		Subject: req.Subject,
		Message: req.Message,
	})
}

// Delete removes a stored email.
func (s *EmailService) Delete(ctx context.Context, id int64, deviceID *string) error {
	return s.emails.Delete(ctx, id, deviceID)
}
