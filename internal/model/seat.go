package model

// SeatType classifies a seat within a hall.  The type determines the
// price charged for the seat when a show is scheduled.  The default
// hall layout places PLATINUM rows closest to the screen, followed by
// GOLD and SILVER blocks.
type SeatType string

const (
	SeatTypePlatinum SeatType = "PLATINUM" // premium rows
	SeatTypeGold     SeatType = "GOLD"     // mid-tier rows
	SeatTypeSilver   SeatType = "SILVER"   // standard rows
)

// Seat describes a single seat of a scheduled show.  Seats are
// uniquely identified by the (ShowID, SeatID) pair and are immutable
// once the show is scheduled: identity, coordinates, type and price
// never change while the show exists.
//
// Fields:
//  ShowID     – show to which this seat belongs.
//  SeatID     – identifier of the seat within the show.
//  RowLabel   – letter or string designating the row (A, B, …, AA).
//  Column     – 1-based column of the seat within its row.
//  SeatType   – pricing tier of the seat.
//  PriceCents – price of the seat for this show.
type Seat struct {
	ShowID     uint64   `json:"show_id"`
	SeatID     uint64   `json:"seat_id"`
	RowLabel   string   `json:"row_label"`
	Column     uint32   `json:"column"`
	SeatType   SeatType `json:"seat_type"`
	PriceCents uint32   `json:"price_cents"`
}

// SeatStatus is the three-way availability state tracked per seat per
// show.  A seat is AVAILABLE until a hold claims it, HELD while an
// unexpired hold owns it and BOOKED once a hold has been confirmed.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatBooked    SeatStatus = "BOOKED"
)

// SeatState is the read projection of a seat's current state exposed
// for rendering seat maps.  HoldExpiresAt is only set while the seat
// is HELD; BookingID only once it is BOOKED.  The hold token itself is
// never exposed – it would allow hijacking the hold.
type SeatState struct {
	SeatID        uint64     `json:"seat_id"`
	Status        SeatStatus `json:"status"`
	HoldExpiresAt *string    `json:"hold_expires_at,omitempty"`
	BookingID     *string    `json:"booking_id,omitempty"`
}
