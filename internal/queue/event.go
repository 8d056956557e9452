// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// confirmed.  It carries enough information for downstream consumers
// to log, notify or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID        string   `json:"booking_id"`
	ShowID           uint64   `json:"show_id"`
	UserRef          string   `json:"user_ref"`
	SeatIDs          []uint64 `json:"seat_ids"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
