// Package ledger is the authoritative store for seat state.  All seat
// mutations in the system go through its operations; callers never
// touch seat records directly.
package ledger

import (
	"errors"
	"fmt"
)

// ErrShowNotFound is returned when an operation references a show that
// was never registered with the ledger.
var ErrShowNotFound = errors.New("show not found")

// ErrHoldNotFound is returned when a token does not correspond to any
// known hold, including holds that were cancelled and already pruned.
// Clients must re-request a hold.
var ErrHoldNotFound = errors.New("hold not found")

// ErrHoldExpired is returned when a confirm arrives after the hold's
// TTL elapsed.  The seats may already have been reclaimed by the
// sweep or by lazy expiry; either way the token is no longer usable.
var ErrHoldExpired = errors.New("hold expired")

// ErrNoSeats is returned when a hold request names no usable seats at
// all, i.e. the seat-ID set is empty after dropping zeros and
// duplicates.  A hold must always cover at least one seat.
var ErrNoSeats = errors.New("no seats requested")

// ErrShowAlreadyRegistered is returned when RegisterShow is called for
// a show that already has seat records.  Seat state is never silently
// reset once a show is open.
var ErrShowAlreadyRegistered = errors.New("show already registered")

// SeatsUnavailableError reports the seats that prevented a hold from
// being placed.  The listed seats were not AVAILABLE at validation
// time (or are unknown to the show), so the client should re-fetch the
// seat map and retry with a different set.
type SeatsUnavailableError struct {
	ShowID  uint64
	SeatIDs []uint64
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable for show %d: %v", e.ShowID, e.SeatIDs)
}
