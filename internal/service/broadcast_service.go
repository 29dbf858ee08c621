package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ticketmail/ticketmail/internal/email"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/newsletter"
)

// broadcastStore is the persistence surface BroadcastService needs.
type broadcastStore interface {
	Create(ctx context.Context, log *model.BroadcastLog) error
	Finalize(ctx context.Context, id int64, sent, failed int, status model.BroadcastStatus) error
	MarkFailed(ctx context.Context, id int64) error
	List(ctx context.Context, deviceID *string) ([]*model.BroadcastLog, error)
	GetByBroadcastID(ctx context.Context, broadcastID string) (*model.BroadcastLog, error)
}

// subscriberSyncer grows the subscriber list from broadcast recipients.
type subscriberSyncer interface {
	Upsert(ctx context.Context, email string, deviceID *string) (*model.Subscriber, bool, bool, error)
}

// emailAuditor records the one audit email row per broadcast.
type emailAuditor interface {
	Create(ctx context.Context, email *model.Email) error
}

// BroadcastRequest is the payload for sending a broadcast. SenderEmail
// is accepted for API compatibility but ignored; the configured sender
// address is authoritative. The event fields apply only when the
// message body is not a structured JSON payload.
type BroadcastRequest struct {
	Subject       string   `json:"subject"`
	Message       string   `json:"message"`
	Recipients    []string `json:"recipients"`
	SenderEmail   string   `json:"senderEmail"`
	SenderName    string   `json:"senderName"`
	BroadcastID   string   `json:"broadcastId"`
	TemplateType  string   `json:"templateType"`
	EventTitle    string   `json:"eventTitle"`
	EventDate     string   `json:"eventDate"`
	EventTime     string   `json:"eventTime"`
	EventLocation string   `json:"eventLocation"`
}

// FailedRecipient records one recipient that could not be delivered to.
type FailedRecipient struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BroadcastSummary is the outcome of one broadcast run.
type BroadcastSummary struct {
	BroadcastID            string                `json:"broadcast_id"`
	Subject                string                `json:"subject"`
	RecipientsCount        int                   `json:"recipients_count"`
	SentCount              int                   `json:"sent_count"`
	FailedCount            int                   `json:"failed_count"`
	Status                 model.BroadcastStatus `json:"status"`
	SubscribersAdded       int                   `json:"subscribers_added"`
	SubscribersReactivated int                   `json:"subscribers_reactivated"`
	FailedEmails           []FailedRecipient     `json:"failed_emails,omitempty"`
}

// BroadcastService sends bulk newsletters and keeps the delivery books.
type BroadcastService struct {
	broadcasts  broadcastStore
	subscribers subscriberSyncer
	emails      emailAuditor
	sender      email.BatchSender
	renderer    *newsletter.Renderer

	senderAddress     string
	defaultSenderName string
	log               *logger.Logger
}

// NewBroadcastService creates a new BroadcastService.
func NewBroadcastService(
	broadcasts broadcastStore,
	subscribers subscriberSyncer,
	emails emailAuditor,
	sender email.BatchSender,
	renderer *newsletter.Renderer,
	senderAddress, defaultSenderName string,
	log *logger.Logger,
) *BroadcastService {
	return &BroadcastService{
		broadcasts:        broadcasts,
		subscribers:       subscribers,
		emails:            emails,
		sender:            sender,
		renderer:          renderer,
		senderAddress:     senderAddress,
		defaultSenderName: defaultSenderName,
		log:               log.WithComponent("broadcast"),
	}
}

// SendBroadcast runs one broadcast: validate, sync recipients into the
// subscriber list, open the transport once, send to every recipient
// sequentially, then finalize the log exactly once. A per-recipient
// failure never aborts the loop. Every recipient is attempted exactly
// once; sent+failed always equals the recipient count.
func (s *BroadcastService) SendBroadcast(ctx context.Context, req BroadcastRequest, deviceID *string) (*BroadcastSummary, error) {
	if req.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: recipients list must contain at least one email", ErrValidation)
	}

	// Sender address always comes from configuration; the request may
	// only override the display name.
	senderName := req.SenderName
	if senderName == "" {
		senderName = s.defaultSenderName
	}
	broadcastID := req.BroadcastID
	if broadcastID == "" {
		broadcastID = uuid.NewString()
	}
	log := s.log.WithBroadcastID(broadcastID)

	payload := newsletter.ParsePayload(req.Subject, req.Message, newsletter.Template(req.TemplateType))
	if payload.EventDate == "" {
		payload.EventDate = req.EventDate
	}
	if payload.EventTime == "" {
		payload.EventTime = req.EventTime
	}
	if payload.EventLocation == "" {
		payload.EventLocation = req.EventLocation
	}
	if req.EventTitle != "" && payload.Title == req.Subject {
		payload.Title = req.EventTitle
	}

	// Grow the subscriber list from the recipients. Best effort: a
	// failed upsert must not block the broadcast.
	added, reactivated := 0, 0
	for _, rcpt := range req.Recipients {
		_, created, wasReactivated, err := s.subscribers.Upsert(ctx, rcpt, deviceID)
		if err != nil {
			log.Warn().Err(err).Str("email", rcpt).Msg("subscriber sync failed")
			continue
		}
		if created {
			added++
		} else if wasReactivated {
			reactivated++
		}
	}

	blog := &model.BroadcastLog{
		DeviceID:        deviceID,
		BroadcastID:     broadcastID,
		Subject:         req.Subject,
		Message:         req.Message,
		SenderEmail:     s.senderAddress,
		SenderName:      senderName,
		RecipientsCount: len(req.Recipients),
	}
	if err := s.broadcasts.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to record broadcast: %w", err)
	}

	batch, err := s.sender.OpenBatch(ctx)
	if err != nil {
		if mErr := s.broadcasts.MarkFailed(ctx, blog.ID); mErr != nil {
			log.Error().Err(mErr).Msg("failed to mark broadcast failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	from := newsletter.FormatFrom(senderName, s.senderAddress)
	year := time.Now().Year()

	sent, failed := 0, 0
	var failedEmails []FailedRecipient
	for _, rcpt := range req.Recipients {
		msg := email.Message{
			From:     from,
			To:       rcpt,
			Subject:  req.Subject,
			HTMLBody: s.renderer.RenderHTML(payload, rcpt, year),
			TextBody: s.renderer.PlainText(payload, senderName, year),
		}
		if err := batch.Send(ctx, msg); err != nil {
			failed++
			failedEmails = append(failedEmails, FailedRecipient{Email: rcpt, Error: err.Error()})
			log.Warn().Err(err).Str("email", rcpt).Msg("send failed")
			continue
		}
		sent++
	}

	if err := batch.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close transport batch")
	}

	// One audit email row per broadcast that delivered anything.
	if sent > 0 {
		audit := &model.Email{
			DeviceID:  deviceID,
			Subject:   req.Subject,
			Message:   truncate(req.Message, model.MaxStoredMessageLen),
			Recipient: s.senderAddress,
		}
		if err := s.emails.Create(ctx, audit); err != nil {
			log.Warn().Err(err).Msg("failed to save broadcast audit email")
		}
	}

	status := model.StatusFor(sent, failed)
	if err := s.broadcasts.Finalize(ctx, blog.ID, sent, failed, status); err != nil {
		log.Error().Err(err).Msg("failed to finalize broadcast log")
	}

	log.Info().
		Int("recipients", len(req.Recipients)).
		Int("sent", sent).
		Int("failed", failed).
		Str("status", string(status)).
		Msg("broadcast finished")

	summary := &BroadcastSummary{
		BroadcastID:            broadcastID,
		Subject:                req.Subject,
		RecipientsCount:        len(req.Recipients),
		SentCount:              sent,
		FailedCount:            failed,
		Status:                 status,
		SubscribersAdded:       added,
		SubscribersReactivated: reactivated,
		FailedEmails:           failedEmails,
	}
	if sent == 0 {
		return summary, ErrBroadcastFailed
	}
	return summary, nil
}

// ListLogs returns past broadcasts, newest first.
func (s *BroadcastService) ListLogs(ctx context.Context, deviceID *string) ([]*model.BroadcastLog, error) {
	return s.broadcasts.List(ctx, deviceID)
}

// GetLog returns one broadcast log by its public broadcast ID.
func (s *BroadcastService) GetLog(ctx context.Context, broadcastID string) (*model.BroadcastLog, error) {
	return s.broadcasts.GetByBroadcastID(ctx, broadcastID)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
