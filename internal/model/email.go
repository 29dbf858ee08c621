package model

import "time"

// Email is a stored email: either a single newsletter sent to one
// recipient, or the audit record summarizing a broadcast.
type Email struct {
	ID        int64     `json:"id"`
	DeviceID  *string   `json:"deviceId,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Recipient string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	EditedAt  time.Time `json:"editedAt"`
}

// MaxStoredMessageLen is the storage limit of the message column; longer
// broadcast payloads are truncated before being written as audit records.
const MaxStoredMessageLen = 500
