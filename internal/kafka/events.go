package kafka

import "time"

// Event is the notification payload handed off to the notify worker. The
// primary mutation never waits on, or fails because of, one of these.
type Event struct {
	Type           string            `json:"type"`
	Reference      string            `json:"reference"` // order or ticket display number
	RecipientEmail string            `json:"recipientEmail"`
	RecipientName  string            `json:"recipientName"`
	Data           map[string]string `json:"data,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}
