package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// BookingRepo persists confirmed bookings and their seats.  Bookings
// are written exactly once at confirmation and never mutated or
// deleted afterwards; Save is idempotent so a retried write of the
// same booking is harmless.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Save writes a booking and its seat rows within one transaction.
// Re-saving an existing booking ID is a no-op thanks to the duplicate
// key guard, which keeps the write idempotent for at-least-once
// callers.
func (r *BookingRepo) Save(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO bookings (id, show_id, user_ref, status, total_amount_cents, created_at)
	             VALUES (?, ?, ?, ?, ?, ?)
	             ON DUPLICATE KEY UPDATE id = id`
	res, err := tx.ExecContext(ctx, ins,
		b.ID, b.ShowID, b.UserRef, string(b.Status), b.TotalAmountCents,
		b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Duplicate: the booking (and its seats) are already stored.
		committed = true
		return tx.Commit()
	}

	if len(b.SeatIDs) > 0 {
		query := `INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES `
		args := make([]interface{}, 0, len(b.SeatIDs)*3)
		for i, sid := range b.SeatIDs {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, b.ID, b.ShowID, sid)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a booking with its seat snapshot.  Returns
// ErrBookingNotFound when the ID is unknown.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, show_id, user_ref, status, total_amount_cents, created_at
	           FROM bookings WHERE id = ?`
	b, err := r.scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadSeats(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListByUserRef returns all bookings of a user, newest first, each
// with its seat snapshot populated.
func (r *BookingRepo) ListByUserRef(ctx context.Context, userRef string) ([]model.Booking, error) {
	const q = `SELECT id, show_id, user_ref, status, total_amount_cents, created_at
	           FROM bookings WHERE user_ref = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range bookings {
		if err := r.loadSeats(ctx, &bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

// rowScanner lets scanBooking work over both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *BookingRepo) scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var status string
	var created time.Time
	err := row.Scan(&b.ID, &b.ShowID, &b.UserRef, &status, &b.TotalAmountCents, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	b.CreatedAt = created.UTC()
	return &b, nil
}

func (r *BookingRepo) loadSeats(ctx context.Context, b *model.Booking) error {
	const q = `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`
	rows, err := r.db.QueryContext(ctx, q, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	b.SeatIDs = b.SeatIDs[:0]
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return err
		}
		b.SeatIDs = append(b.SeatIDs, sid)
	}
	return rows.Err()
}
