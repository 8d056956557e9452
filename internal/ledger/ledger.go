package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

const (
	// maxCommitAttempts bounds the conflict-retry loop around the
	// validate/commit cycle.  After the last attempt the caller sees
	// the seats as unavailable; the conflict itself is never surfaced.
	maxCommitAttempts = 3
	// commitRetryDelay spaces out retries so the winning writer can
	// finish before we validate again.
	commitRetryDelay = 10 * time.Millisecond
	// terminalHoldRetention is how long terminal holds stay resolvable
	// after their expiry.  Confirmed holds must outlive any realistic
	// payment retry so Confirm stays idempotent.
	terminalHoldRetention = 10 * time.Minute
)

// seatRecord is the mutable state of one (show, seat) pair.  Every
// field except seat is guarded by mu.  version increments on each
// state transition and backs the optimistic validate/commit cycle.
type seatRecord struct {
	mu      sync.Mutex
	seat    model.Seat
	status  model.SeatStatus
	token   string    // owning hold token while HELD
	expires time.Time // hold expiry while HELD
	booking string    // booking ID once BOOKED
	version uint64
}

// holdRecord pairs a hold with its confirmation result.  mu serialises
// the terminal transition: exactly one of confirm, release and sweep
// wins; the others observe the terminal status and no-op.
type holdRecord struct {
	mu      sync.Mutex
	hold    model.Hold
	booking *model.Booking
}

// Ledger is the authoritative seat-state store.  Seat records are kept
// per show and mutated only through the compare-and-swap style
// operations below.  Locking is seat-level: holds on disjoint seat
// sets never contend, and multi-seat operations always lock seats in
// ascending seat-ID order so they cannot deadlock.
type Ledger struct {
	now func() time.Time

	mu    sync.RWMutex
	shows map[uint64]map[uint64]*seatRecord

	holdsMu sync.RWMutex
	holds   map[string]*holdRecord
}

// New returns an empty ledger using the wall clock.
func New() *Ledger {
	return &Ledger{
		now:   time.Now,
		shows: make(map[uint64]map[uint64]*seatRecord),
		holds: make(map[string]*holdRecord),
	}
}

// RegisterShow creates the seat records for a show, all AVAILABLE.
// Seat records live for as long as the show exists; registering the
// same show twice is rejected so state is never silently reset.
func (l *Ledger) RegisterShow(showID uint64, seats []model.Seat) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.shows[showID]; ok {
		return ErrShowAlreadyRegistered
	}
	recs := make(map[uint64]*seatRecord, len(seats))
	for _, s := range seats {
		recs[s.SeatID] = &seatRecord{seat: s, status: model.SeatAvailable}
	}
	l.shows[showID] = recs
	return nil
}

// TryHold attempts to place a hold on the given seat set.  The hold is
// all-or-nothing: when any requested seat is not AVAILABLE (or unknown
// to the show) no seat is touched and a SeatsUnavailableError lists
// the offending seats.  Under a race for overlapping seats exactly one
// caller succeeds; first writer wins.
func (l *Ledger) TryHold(ctx context.Context, showID uint64, seatIDs []uint64, token string, ttl time.Duration) (*model.Hold, error) {
	ids := NormalizeSeatIDs(seatIDs)
	if len(ids) == 0 {
		return nil, ErrNoSeats
	}
	recs, unknown, err := l.resolve(showID, ids)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, &SeatsUnavailableError{ShowID: showID, SeatIDs: unknown}
	}

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		now := l.now()

		// Validation phase: lock each seat briefly, reclaim lazily
		// expired holds, snapshot versions.
		versions := make([]uint64, len(recs))
		var unavailable []uint64
		for i, rec := range recs {
			rec.mu.Lock()
			l.reclaimExpiredLocked(rec, now)
			if rec.status != model.SeatAvailable {
				unavailable = append(unavailable, rec.seat.SeatID)
			}
			versions[i] = rec.version
			rec.mu.Unlock()
		}
		if len(unavailable) > 0 {
			return nil, &SeatsUnavailableError{ShowID: showID, SeatIDs: unavailable}
		}

		// Commit phase: lock the full set in seat-ID order, re-check
		// the versions, then transition every seat to HELD.
		expiresAt := now.Add(ttl)
		if l.commitHold(recs, versions, token, expiresAt) {
			hold := model.Hold{
				Token:     token,
				ShowID:    showID,
				SeatIDs:   ids,
				Status:    model.HoldActive,
				CreatedAt: now,
				ExpiresAt: expiresAt,
			}
			l.holdsMu.Lock()
			l.holds[token] = &holdRecord{hold: hold}
			l.holdsMu.Unlock()
			out := hold
			return &out, nil
		}

		// Conflict: a concurrent writer advanced a seat between the
		// phases.  Back off briefly and re-validate.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(commitRetryDelay):
		}
	}
	// Retries exhausted.  The racing writers were after these seats,
	// so report the whole set; the client re-fetches the map anyway.
	return nil, &SeatsUnavailableError{ShowID: showID, SeatIDs: ids}
}

// commitHold performs the second phase of TryHold.  It returns false
// on version mismatch, leaving every seat untouched.
func (l *Ledger) commitHold(recs []*seatRecord, versions []uint64, token string, expiresAt time.Time) bool {
	for _, rec := range recs {
		rec.mu.Lock()
	}
	defer func() {
		for _, rec := range recs {
			rec.mu.Unlock()
		}
	}()
	for i, rec := range recs {
		if rec.version != versions[i] || rec.status != model.SeatAvailable {
			return false
		}
	}
	for _, rec := range recs {
		rec.status = model.SeatHeld
		rec.token = token
		rec.expires = expiresAt
		rec.version++
	}
	return true
}

// Confirm converts an active, unexpired hold into a booking.  All
// seats owned by the token transition HELD→BOOKED atomically.  Confirm
// is idempotent: once it has succeeded, repeated calls with the same
// token return the identical booking.
func (l *Ledger) Confirm(ctx context.Context, token, userRef string) (*model.Booking, error) {
	hr := l.lookupHold(token)
	if hr == nil {
		return nil, ErrHoldNotFound
	}
	hr.mu.Lock()
	defer hr.mu.Unlock()

	switch hr.hold.Status {
	case model.HoldConfirmed:
		out := *hr.booking
		return &out, nil
	case model.HoldCancelled:
		return nil, ErrHoldNotFound
	case model.HoldExpired:
		return nil, ErrHoldExpired
	}

	now := l.now()
	if hr.hold.Expired(now) {
		// The sweep has not reached this hold yet; expire it here so
		// the seats free up immediately.
		hr.hold.Status = model.HoldExpired
		l.releaseSeats(hr.hold.ShowID, hr.hold.SeatIDs, token)
		return nil, ErrHoldExpired
	}

	recs, _, err := l.resolve(hr.hold.ShowID, hr.hold.SeatIDs)
	if err != nil {
		return nil, err
	}
	bookingID := uuid.NewString()
	var total uint32
	for _, rec := range recs {
		rec.mu.Lock()
	}
	for _, rec := range recs {
		// The hold is ACTIVE and unexpired and we are under its lock,
		// so every seat must still be HELD by this token.
		if rec.status != model.SeatHeld || rec.token != token {
			for _, r := range recs {
				r.mu.Unlock()
			}
			return nil, ErrHoldExpired
		}
		total += rec.seat.PriceCents
	}
	for _, rec := range recs {
		rec.status = model.SeatBooked
		rec.token = ""
		rec.booking = bookingID
		rec.version++
		rec.mu.Unlock()
	}

	booking := &model.Booking{
		ID:               bookingID,
		ShowID:           hr.hold.ShowID,
		SeatIDs:          append([]uint64(nil), hr.hold.SeatIDs...),
		UserRef:          userRef,
		TotalAmountCents: total,
		Status:           model.BookingConfirmed,
		CreatedAt:        now,
	}
	hr.hold.Status = model.HoldConfirmed
	hr.booking = booking
	out := *booking
	return &out, nil
}

// Release cancels an active hold, returning its seats to AVAILABLE.
// Releasing a hold that already reached a terminal state is a no-op;
// an unknown token yields ErrHoldNotFound.
func (l *Ledger) Release(ctx context.Context, token string) error {
	hr := l.lookupHold(token)
	if hr == nil {
		return ErrHoldNotFound
	}
	hr.mu.Lock()
	defer hr.mu.Unlock()
	if hr.hold.Terminal() {
		return nil
	}
	hr.hold.Status = model.HoldCancelled
	l.releaseSeats(hr.hold.ShowID, hr.hold.SeatIDs, token)
	return nil
}

// Extend pushes the expiry of an active, unexpired hold further into
// the future.  The new expiry is also written to every seat record so
// lazy reclamation honours it.
func (l *Ledger) Extend(ctx context.Context, token string, additional time.Duration) (*model.Hold, error) {
	hr := l.lookupHold(token)
	if hr == nil {
		return nil, ErrHoldNotFound
	}
	hr.mu.Lock()
	defer hr.mu.Unlock()
	switch hr.hold.Status {
	case model.HoldCancelled, model.HoldConfirmed:
		return nil, ErrHoldNotFound
	case model.HoldExpired:
		return nil, ErrHoldExpired
	}
	now := l.now()
	if hr.hold.Expired(now) {
		hr.hold.Status = model.HoldExpired
		l.releaseSeats(hr.hold.ShowID, hr.hold.SeatIDs, token)
		return nil, ErrHoldExpired
	}
	newExpiry := hr.hold.ExpiresAt.Add(additional)
	recs, _, err := l.resolve(hr.hold.ShowID, hr.hold.SeatIDs)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		rec.mu.Lock()
		if rec.status == model.SeatHeld && rec.token == token {
			rec.expires = newExpiry
			rec.version++
		}
		rec.mu.Unlock()
	}
	hr.hold.ExpiresAt = newExpiry
	out := hr.hold
	return &out, nil
}

// SweepExpired reclaims the seats of every active hold whose TTL has
// elapsed at now, marks those holds EXPIRED and prunes terminal holds
// past their retention window.  It returns the number of holds newly
// expired.  The sweep is idempotent and safe to run concurrently with
// itself and with every other ledger operation: for a given hold only
// one caller performs the terminal transition.
func (l *Ledger) SweepExpired(now time.Time) int {
	l.holdsMu.RLock()
	candidates := make([]*holdRecord, 0, len(l.holds))
	for _, hr := range l.holds {
		candidates = append(candidates, hr)
	}
	l.holdsMu.RUnlock()

	expired := 0
	var prune []string
	for _, hr := range candidates {
		hr.mu.Lock()
		switch {
		case hr.hold.Status == model.HoldActive && hr.hold.Expired(now):
			hr.hold.Status = model.HoldExpired
			l.releaseSeats(hr.hold.ShowID, hr.hold.SeatIDs, hr.hold.Token)
			expired++
		case hr.hold.Terminal() && now.Sub(hr.hold.ExpiresAt) > terminalHoldRetention:
			prune = append(prune, hr.hold.Token)
		}
		hr.mu.Unlock()
	}
	if len(prune) > 0 {
		l.holdsMu.Lock()
		for _, token := range prune {
			delete(l.holds, token)
		}
		l.holdsMu.Unlock()
	}
	return expired
}

// SeatStates returns the current state of every seat of a show, keyed
// by seat ID.  Lazily expired holds are reclaimed on the way so the
// projection never shows a stale HELD past its TTL.
func (l *Ledger) SeatStates(showID uint64) (map[uint64]model.SeatState, error) {
	l.mu.RLock()
	recs, ok := l.shows[showID]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrShowNotFound
	}
	now := l.now()
	states := make(map[uint64]model.SeatState, len(recs))
	for id, rec := range recs {
		rec.mu.Lock()
		l.reclaimExpiredLocked(rec, now)
		st := model.SeatState{SeatID: id, Status: rec.status}
		switch rec.status {
		case model.SeatHeld:
			exp := rec.expires.UTC().Format(time.RFC3339)
			st.HoldExpiresAt = &exp
		case model.SeatBooked:
			b := rec.booking
			st.BookingID = &b
		}
		rec.mu.Unlock()
		states[id] = st
	}
	return states, nil
}

// SeatPrices returns the price of each listed seat, keyed by seat ID.
// Prices are immutable once the show is registered, so no locking of
// the mutable seat state is needed.
func (l *Ledger) SeatPrices(showID uint64, seatIDs []uint64) (map[uint64]uint32, error) {
	recs, unknown, err := l.resolve(showID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, &SeatsUnavailableError{ShowID: showID, SeatIDs: unknown}
	}
	prices := make(map[uint64]uint32, len(recs))
	for _, rec := range recs {
		prices[rec.seat.SeatID] = rec.seat.PriceCents
	}
	return prices, nil
}

// Hold returns a copy of the hold identified by token, if known.
func (l *Ledger) Hold(token string) (*model.Hold, bool) {
	hr := l.lookupHold(token)
	if hr == nil {
		return nil, false
	}
	hr.mu.Lock()
	out := hr.hold
	hr.mu.Unlock()
	return &out, true
}

// reclaimExpiredLocked returns a lazily expired HELD seat to
// AVAILABLE.  The caller must hold rec.mu.  The owning hold keeps its
// ACTIVE status until confirm, release or the sweep observes the
// expiry; seat reclamation here is safe because every later transition
// re-checks seat ownership by token.
func (l *Ledger) reclaimExpiredLocked(rec *seatRecord, now time.Time) {
	if rec.status == model.SeatHeld && !now.Before(rec.expires) {
		rec.status = model.SeatAvailable
		rec.token = ""
		rec.expires = time.Time{}
		rec.version++
	}
}

// releaseSeats returns every seat still HELD by token to AVAILABLE.
// Seats already reclaimed (lazy expiry) or re-held by a newer hold are
// left alone, which makes the release idempotent.
func (l *Ledger) releaseSeats(showID uint64, seatIDs []uint64, token string) {
	recs, _, err := l.resolve(showID, seatIDs)
	if err != nil {
		return
	}
	for _, rec := range recs {
		rec.mu.Lock()
		if rec.status == model.SeatHeld && rec.token == token {
			rec.status = model.SeatAvailable
			rec.token = ""
			rec.expires = time.Time{}
			rec.version++
		}
		rec.mu.Unlock()
	}
}

// resolve maps seat IDs to their records in ascending seat-ID order.
// Unknown seat IDs are returned separately so TryHold can report them.
func (l *Ledger) resolve(showID uint64, seatIDs []uint64) ([]*seatRecord, []uint64, error) {
	l.mu.RLock()
	show, ok := l.shows[showID]
	l.mu.RUnlock()
	if !ok {
		return nil, nil, ErrShowNotFound
	}
	recs := make([]*seatRecord, 0, len(seatIDs))
	var unknown []uint64
	for _, id := range seatIDs {
		rec, ok := show[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, unknown, nil
}

func (l *Ledger) lookupHold(token string) *holdRecord {
	l.holdsMu.RLock()
	defer l.holdsMu.RUnlock()
	return l.holds[token]
}

// NormalizeSeatIDs removes duplicates and zero IDs and returns the
// result in ascending order.  Callers validating seat counts must do
// so against the normalized set; sorted order is what makes multi-seat
// locking deadlock-free.
func NormalizeSeatIDs(seatIDs []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(seatIDs))
	out := make([]uint64, 0, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
