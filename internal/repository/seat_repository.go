package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// SeatRepo provides data access to the show_seats table, which stores
// the immutable seat map of every scheduled show.  Rows are inserted
// once when a show is scheduled and only ever read afterwards.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulk inserts the full seat map of a show in a single
// statement.  Passing an empty slice has no effect and returns nil.
// Re-inserting an existing (show_id, seat_id) pair fails on the unique
// key, which is intentional: seat maps are immutable.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO show_seats (show_id, seat_id, row_label, col, seat_type, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.ShowID, s.SeatID, s.RowLabel, s.Column, string(s.SeatType), s.PriceCents)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByShow returns the seat map of a show ordered by seat ID.  An
// unknown show yields an empty slice and nil error; callers decide
// whether that is a problem.
func (r *SeatRepo) ListByShow(ctx context.Context, showID uint64) ([]model.Seat, error) {
	const q = `SELECT show_id, seat_id, row_label, col, seat_type, price_cents
	           FROM show_seats
	           WHERE show_id = ?
	           ORDER BY seat_id`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		var seatType string
		if err := rows.Scan(&s.ShowID, &s.SeatID, &s.RowLabel, &s.Column, &seatType, &s.PriceCents); err != nil {
			return nil, err
		}
		s.SeatType = model.SeatType(seatType)
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// ListShowIDs returns the IDs of all shows that have seat rows.  Used
// at startup to rebuild the in-memory catalog and ledger.
func (r *SeatRepo) ListShowIDs(ctx context.Context) ([]uint64, error) {
	const q = `SELECT DISTINCT show_id FROM show_seats ORDER BY show_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
