package model

import "time"

// Subscriber is a deduplicated record of an email address that has
// received at least one broadcast or been explicitly registered.
// There is at most one row per address; "deleting" a subscriber only
// flips IsActive off, so a later broadcast can reactivate it.
type Subscriber struct {
	ID        int64     `json:"id"`
	DeviceID  *string   `json:"deviceId,omitempty"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
