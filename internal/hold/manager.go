// Package hold wraps the ledger with TTL bookkeeping and token
// issuance.  All hold placement, renewal and cancellation flows go
// through the Manager so tokens are always generated here and never
// supplied by clients.
package hold

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/ledger"
	"github.com/iliyamo/movie-seat-booking/internal/model"
)

const (
	// DefaultTTL is how long a hold protects its seats when no TTL is
	// configured.  Five minutes covers a normal checkout.
	DefaultTTL = 5 * time.Minute
	// DefaultMaxSeats caps the seats a single hold may cover.
	DefaultMaxSeats = 10
)

// ErrSeatCount is returned when a hold request covers no seats or more
// than the configured maximum after deduplication.
var ErrSeatCount = errors.New("invalid number of seats")

// Manager issues holds against the ledger.  It owns the hold TTL and
// generates cryptographically unpredictable tokens so one client
// cannot guess or hijack another client's hold.
type Manager struct {
	ledger   *ledger.Ledger
	ttl      time.Duration
	maxSeats int
}

// NewManager constructs a Manager with the given defaults.  Zero
// values fall back to DefaultTTL and DefaultMaxSeats.
func NewManager(l *ledger.Ledger, ttl time.Duration, maxSeats int) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSeats <= 0 {
		maxSeats = DefaultMaxSeats
	}
	return &Manager{ledger: l, ttl: ttl, maxSeats: maxSeats}
}

// TTL returns the hold TTL in effect.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Place validates the seat count, issues a fresh token and asks the
// ledger for an all-or-nothing hold on the seat set.  The count limit
// applies to the normalized set: duplicates and zero IDs are dropped
// first, so repeating a seat cannot inflate the count and a request
// naming no real seat is rejected outright.  On contention the ledger
// retries internally; callers only ever see success or a
// SeatsUnavailableError.
func (m *Manager) Place(ctx context.Context, showID uint64, seatIDs []uint64) (*model.Hold, error) {
	ids := ledger.NormalizeSeatIDs(seatIDs)
	if len(ids) == 0 || len(ids) > m.maxSeats {
		return nil, ErrSeatCount
	}
	token, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate hold token: %w", err)
	}
	return m.ledger.TryHold(ctx, showID, ids, token, m.ttl)
}

// Extend renews an active hold by the given duration, e.g. while the
// payment form is still open.  A non-positive duration renews by one
// full TTL.
func (m *Manager) Extend(ctx context.Context, token string, additional time.Duration) (*model.Hold, error) {
	if additional <= 0 {
		additional = m.ttl
	}
	return m.ledger.Extend(ctx, token, additional)
}

// Cancel releases a hold explicitly.  Cancelling an unknown or already
// terminal hold is a no-op: the seats either were never held or have
// already been settled by confirm, release or the sweep.
func (m *Manager) Cancel(ctx context.Context, token string) error {
	err := m.ledger.Release(ctx, token)
	if errors.Is(err, ledger.ErrHoldNotFound) {
		return nil
	}
	return err
}

// randomToken returns a hex string of n random bytes from crypto/rand.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
