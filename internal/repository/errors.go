// Package repository defines the MySQL persistence layer.  The
// reservation ledger stays authoritative in memory; MySQL is the
// system of record for catalog rows and committed bookings only, so
// repository calls never sit on the hold/confirm hot path.
package repository

import "errors"

// ErrBookingNotFound is returned when a booking ID does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")
