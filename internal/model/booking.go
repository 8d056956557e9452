package model

import "time"

// BookingStatus enumerates the states of a booking record.  Only
// CONFIRMED bookings are ever materialised by this service: payment
// runs while the seats are still merely held, so a declined or timed
// out payment releases the hold without creating a booking at all.
// The other states exist for persistence compatibility with upstream
// consumers that model the full payment funnel.
type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingFailed         BookingStatus = "FAILED"
)

// Booking is the immutable record of a successfully confirmed seat
// purchase.  It is created exactly once, when a hold is confirmed,
// and is never deleted or mutated afterwards.
//
// Fields:
//  ID               – uuid assigned at confirmation.
//  ShowID           – show the seats belong to.
//  SeatIDs          – immutable snapshot of the booked seats.
//  UserRef          – reference to the purchasing user (issued externally).
//  TotalAmountCents – sum of the seat prices at confirmation time.
//  Status           – always CONFIRMED for records created here.
//  CreatedAt        – confirmation timestamp.
type Booking struct {
	ID               string        `json:"booking_id"`
	ShowID           uint64        `json:"show_id"`
	SeatIDs          []uint64      `json:"seat_ids"`
	UserRef          string        `json:"user_ref"`
	TotalAmountCents uint32        `json:"total_amount_cents"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}
