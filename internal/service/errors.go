package service

import "errors"

// Common service errors
var (
	// ErrValidation marks a request rejected before any side effect.
	ErrValidation = errors.New("validation failed")
	// ErrTransportUnavailable means the mail transport could not be
	// reached; nothing was sent.
	ErrTransportUnavailable = errors.New("email transport unavailable")
	// ErrBroadcastFailed means every recipient of a broadcast failed.
	// It is returned alongside the summary so callers can still report
	// the per-recipient detail.
	ErrBroadcastFailed = errors.New("broadcast failed for all recipients")
)
