package model

import "time"

// BroadcastStatus represents the delivery outcome of a broadcast
type BroadcastStatus string

const (
	BroadcastStatusPending BroadcastStatus = "pending"
	BroadcastStatusSent    BroadcastStatus = "sent"
	BroadcastStatusFailed  BroadcastStatus = "failed"
	BroadcastStatusPartial BroadcastStatus = "partial"
)

// BroadcastLog tracks one broadcast: created with status=pending before
// any send attempt, finalized exactly once with the outcome counts.
type BroadcastLog struct {
	ID              int64           `json:"id"`
	DeviceID        *string         `json:"deviceId,omitempty"`
	BroadcastID     string          `json:"broadcastId"`
	Subject         string          `json:"subject"`
	Message         string          `json:"message"`
	SenderEmail     string          `json:"senderEmail"`
	SenderName      string          `json:"senderName"`
	RecipientsCount int             `json:"recipientsCount"`
	SentCount       int             `json:"sentCount"`
	FailedCount     int             `json:"failedCount"`
	Status          BroadcastStatus `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// StatusFor derives the final broadcast status from the outcome counts.
func StatusFor(sent, failed int) BroadcastStatus {
	switch {
	case failed == 0:
		return BroadcastStatusSent
	case sent == 0:
		return BroadcastStatusFailed
	default:
		return BroadcastStatusPartial
	}
}
