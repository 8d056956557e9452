// Package catalog supplies immutable per-show seat maps.  Seat maps are
// registered once when a show is scheduled and consumed read-only by the
// reservation ledger at hold-validation time and by the layout endpoint
// for rendering.
package catalog

import (
	"sort"
	"sync"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// SeatBlock describes one contiguous block of rows sharing a seat type
// and price.  Blocks are stacked top to bottom in the order given, so
// the first block occupies rows A.., the next continues where the
// previous ended.
type SeatBlock struct {
	SeatType   model.SeatType
	Rows       int
	Columns    int
	PriceCents uint32
}

// DefaultLayout is the standard hall configuration: PLATINUM rows
// closest to the screen, then GOLD, then SILVER.
var DefaultLayout = []SeatBlock{
	{SeatType: model.SeatTypePlatinum, Rows: 4, Columns: 10, PriceCents: 45000},
	{SeatType: model.SeatTypeGold, Rows: 6, Columns: 10, PriceCents: 30000},
	{SeatType: model.SeatTypeSilver, Rows: 8, Columns: 10, PriceCents: 18000},
}

// Catalog is an in-memory registry of show seat maps.  Registration is
// write-once per show; lookups are lock-cheap and safe for concurrent
// use.
type Catalog struct {
	mu    sync.RWMutex
	shows map[uint64][]model.Seat
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{shows: make(map[uint64][]model.Seat)}
}

// BuildSeats expands a block layout into the concrete seat list for a
// show.  Seat IDs are assigned sequentially starting at 1 and row
// labels continue across blocks (A, B, …, AA).  The result is sorted
// by seat ID and never changes once the show is registered.
func BuildSeats(showID uint64, layout []SeatBlock) []model.Seat {
	seats := make([]model.Seat, 0, 64)
	row := 0
	var seatID uint64
	for _, blk := range layout {
		for r := 0; r < blk.Rows; r++ {
			label := indexToRowLabel(row)
			for c := 1; c <= blk.Columns; c++ {
				seatID++
				seats = append(seats, model.Seat{
					ShowID:     showID,
					SeatID:     seatID,
					RowLabel:   label,
					Column:     uint32(c),
					SeatType:   blk.SeatType,
					PriceCents: blk.PriceCents,
				})
			}
			row++
		}
	}
	return seats
}

// Register stores the seat map for a show.  Registering the same show
// twice replaces the previous map; callers are expected to do so only
// before the show is opened for booking.
func (c *Catalog) Register(showID uint64, seats []model.Seat) {
	cp := make([]model.Seat, len(seats))
	copy(cp, seats)
	sort.Slice(cp, func(i, j int) bool { return cp[i].SeatID < cp[j].SeatID })
	c.mu.Lock()
	c.shows[showID] = cp
	c.mu.Unlock()
}

// Seats returns the seat map of a show.  The second return value is
// false when the show is unknown.  Callers must not mutate the
// returned slice.
func (c *Catalog) Seats(showID uint64) ([]model.Seat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seats, ok := c.shows[showID]
	return seats, ok
}

// LayoutSection groups the seats of one seat type for rendering.  The
// UI draws each section as a grid of Rows x Columns with the listed
// seats placed by their coordinates.
type LayoutSection struct {
	SeatType   model.SeatType `json:"seat_type"`
	Rows       int            `json:"rows"`
	Columns    int            `json:"columns"`
	PriceCents uint32         `json:"price_cents"`
	Seats      []model.Seat   `json:"seats"`
}

// Layout returns the seat map of a show grouped by seat type, in
// screen order (PLATINUM, GOLD, SILVER).  Returns false when the show
// is unknown.
func (c *Catalog) Layout(showID uint64) ([]LayoutSection, bool) {
	seats, ok := c.Seats(showID)
	if !ok {
		return nil, false
	}
	order := []model.SeatType{model.SeatTypePlatinum, model.SeatTypeGold, model.SeatTypeSilver}
	byType := make(map[model.SeatType]*LayoutSection)
	for _, s := range seats {
		sec, ok := byType[s.SeatType]
		if !ok {
			sec = &LayoutSection{SeatType: s.SeatType, PriceCents: s.PriceCents}
			byType[s.SeatType] = sec
			// seat types outside the standard tiers keep insertion order
			found := false
			for _, t := range order {
				if t == s.SeatType {
					found = true
					break
				}
			}
			if !found {
				order = append(order, s.SeatType)
			}
		}
		sec.Seats = append(sec.Seats, s)
		if int(s.Column) > sec.Columns {
			sec.Columns = int(s.Column)
		}
	}
	sections := make([]LayoutSection, 0, len(byType))
	for _, t := range order {
		sec, ok := byType[t]
		if !ok {
			continue
		}
		rows := map[string]struct{}{}
		for _, s := range sec.Seats {
			rows[s.RowLabel] = struct{}{}
		}
		sec.Rows = len(rows)
		sections = append(sections, *sec)
	}
	return sections, true
}

// indexToRowLabel converts a zero-based row index to an alphabetical
// label like A, B, AA.
func indexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		rem := i % 26
		res = append(res, rune('A'+rem))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
