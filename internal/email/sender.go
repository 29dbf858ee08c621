package email

import "context"

// Sender is the interface that all email providers must implement.
// This abstraction allows swapping email providers (SMTP, SendGrid,
// Gmail, etc.) without changing business logic.
type Sender interface {
	// Send sends an email to the specified recipient.
	Send(ctx context.Context, msg Message) error
}

// BatchSender is implemented by providers that can amortize setup cost
// across many sends. A broadcast opens one batch, pushes every
// recipient through it, then closes it.
type BatchSender interface {
	Sender
	// OpenBatch acquires whatever the provider needs for a run of
	// sends (an SMTP connection, typically). An error means the
	// transport is unavailable and no send should be attempted.
	OpenBatch(ctx context.Context) (Batch, error)
}

// Batch is a run of sends sharing one transport session.
type Batch interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Message represents an email message to be sent.
type Message struct {
	From     string // formatted From header ("Name <addr>" or bare address)
	To       string // recipient email address
	Subject  string // email subject
	HTMLBody string // HTML email body
	TextBody string // plain-text fallback body
}

// singleBatch adapts a stateless Sender to the BatchSender interface.
type singleBatch struct {
	Sender
}

// AsBatchSender wraps a Sender whose sends are independent HTTP calls;
// OpenBatch and Close become no-ops.
func AsBatchSender(s Sender) BatchSender {
	if bs, ok := s.(BatchSender); ok {
		return bs
	}
	return singleBatch{s}
}

func (s singleBatch) OpenBatch(ctx context.Context) (Batch, error) {
	return s, nil
}

func (s singleBatch) Close() error { return nil }
