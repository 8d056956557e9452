// Package booking implements the public booking operation: place a
// hold, run the external payment step, then confirm or release.  The
// hold TTL is the correctness backstop: if the process dies between
// hold placement and payment resolution, the expiry sweep returns the
// seats with no compensating transaction.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/hold"
	"github.com/iliyamo/movie-seat-booking/internal/ledger"
	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/payment"
	"github.com/iliyamo/movie-seat-booking/internal/queue"
)

// ErrPaymentFailed is returned when the payment service declined the
// charge.  The seats have been released; the client may retry with a
// fresh hold.
var ErrPaymentFailed = errors.New("payment declined")

// ErrPaymentTimeout is returned when the payment step did not resolve
// within its deadline.  The seats have been released.
var ErrPaymentTimeout = errors.New("payment timed out")

// Store persists confirmed bookings to durable storage.
type Store interface {
	Save(ctx context.Context, b *model.Booking) error
}

// EventPublisher publishes a booking.confirmed event.  Publishing is
// best effort and never fails the booking.
type EventPublisher func(ctx context.Context, ev queue.BookingConfirmedEvent) error

// Orchestrator composes the hold manager, the payment service and the
// ledger into the single mutating entry point of the reservation core.
type Orchestrator struct {
	ledger         *ledger.Ledger
	holds          *hold.Manager
	charger        payment.Charger
	store          Store
	publish        EventPublisher
	paymentTimeout time.Duration
}

// NewOrchestrator wires the orchestrator.  store and publish may be
// nil, in which case persistence and event publishing are skipped; the
// ledger remains the source of truth either way.
func NewOrchestrator(l *ledger.Ledger, hm *hold.Manager, ch payment.Charger, store Store, publish EventPublisher, paymentTimeout time.Duration) *Orchestrator {
	if paymentTimeout <= 0 {
		paymentTimeout = 30 * time.Second
	}
	return &Orchestrator{
		ledger:         l,
		holds:          hm,
		charger:        ch,
		store:          store,
		publish:        publish,
		paymentTimeout: paymentTimeout,
	}
}

// RequestBooking runs a complete booking attempt for the user:
//
//	[start] -> HOLD_PLACED -> (payment ok)      -> CONFIRMED
//	                       -> (payment fail/timeout) -> RELEASED
//
// A SeatsUnavailableError from hold placement means another client won
// the seats; payment errors release the hold explicitly.  Any crash in
// between leaves the hold to the TTL sweep.
func (o *Orchestrator) RequestBooking(ctx context.Context, showID uint64, seatIDs []uint64, userRef string) (*model.Booking, error) {
	h, err := o.holds.Place(ctx, showID, seatIDs)
	if err != nil {
		return nil, err
	}

	amount, err := o.holdAmount(h)
	if err != nil {
		_ = o.holds.Cancel(ctx, h.Token)
		return nil, err
	}

	payCtx, cancel := context.WithTimeout(ctx, o.paymentTimeout)
	outcome, err := o.charger.Charge(payCtx, amount, userRef)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = payment.OutcomeTimeout
		} else {
			_ = o.holds.Cancel(ctx, h.Token)
			return nil, fmt.Errorf("charge: %w", err)
		}
	}
	switch outcome {
	case payment.OutcomeApproved:
		// fall through to confirm
	case payment.OutcomeTimeout:
		_ = o.holds.Cancel(ctx, h.Token)
		return nil, ErrPaymentTimeout
	default:
		_ = o.holds.Cancel(ctx, h.Token)
		return nil, ErrPaymentFailed
	}

	b, err := o.ledger.Confirm(ctx, h.Token, userRef)
	if err != nil {
		// The hold expired while payment ran (TTL shorter than the
		// payment round trip).  The seats are already released.
		return nil, err
	}

	if o.store != nil {
		if err := o.store.Save(ctx, b); err != nil {
			// The ledger state is committed; losing the durable copy
			// is logged and repaired out of band rather than failing
			// a paid booking.
			log.Printf("booking: persist %s failed: %v", b.ID, err)
		}
	}
	if o.publish != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:        b.ID,
			ShowID:           b.ShowID,
			UserRef:          b.UserRef,
			SeatIDs:          b.SeatIDs,
			TotalAmountCents: b.TotalAmountCents,
			ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := o.publish(ctx, ev); err != nil {
			log.Printf("booking: publish confirmed event for %s failed: %v", b.ID, err)
		}
	}
	return b, nil
}

// holdAmount sums the prices of the held seats from the ledger's seat
// records via the hold's show projection.
func (o *Orchestrator) holdAmount(h *model.Hold) (uint32, error) {
	seats, err := o.ledger.SeatPrices(h.ShowID, h.SeatIDs)
	if err != nil {
		return 0, err
	}
	var total uint32
	for _, p := range seats {
		total += p
	}
	return total, nil
}
