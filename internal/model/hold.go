package model

import "time"

// HoldStatus tracks the lifecycle of a hold.  A hold starts ACTIVE and
// ends in exactly one of the terminal states: CONFIRMED when converted
// into a booking, EXPIRED when the TTL sweep reclaimed it, CANCELLED
// when the holder released it explicitly.
type HoldStatus string

const (
	HoldActive    HoldStatus = "ACTIVE"
	HoldConfirmed HoldStatus = "CONFIRMED"
	HoldExpired   HoldStatus = "EXPIRED"
	HoldCancelled HoldStatus = "CANCELLED"
)

// Hold is a time-bounded, token-scoped exclusive claim on a set of
// seats placed prior to payment confirmation.  While ACTIVE, the hold
// owns the seat-state transitions for its seat set: no other caller
// may reclaim the seats until the hold reaches a terminal state or
// its expiry passes.
//
// Fields:
//  Token     – opaque, cryptographically random token identifying the hold.
//  ShowID    – show whose seats are held.
//  SeatIDs   – seats covered by the hold (deduplicated, sorted).
//  Status    – current lifecycle state.
//  CreatedAt – when the hold was placed.
//  ExpiresAt – when the hold becomes eligible for the expiry sweep.
type Hold struct {
	Token     string     `json:"hold_token"`
	ShowID    uint64     `json:"show_id"`
	SeatIDs   []uint64   `json:"seat_ids"`
	Status    HoldStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Expired reports whether the hold's TTL has elapsed at the given
// instant.  It does not inspect Status: an ACTIVE hold past its expiry
// is expired for all validation purposes even before a sweep marks it.
func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// Terminal reports whether the hold has reached one of its final
// states.  Terminal holds never transition again.
func (h *Hold) Terminal() bool {
	return h.Status != HoldActive
}
