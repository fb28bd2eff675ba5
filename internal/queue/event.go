// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer for them.
package queue

// ReservationConfirmedEvent is published after a reservation transaction
// commits. It carries enough information for downstream consumers to log or
// notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	UserID          uint64 `json:"user_id"`
	UserEmail       string `json:"user_email"`
	Kind            string `json:"kind"` // "destination" or "package"
	TargetID        uint64 `json:"target_id"`
	ItemName        string `json:"item_name"`
	Quantity        uint32 `json:"quantity"`
	ReservationDate string `json:"reservation_date"`
	ConfirmedAt     string `json:"confirmed_at"`
}
