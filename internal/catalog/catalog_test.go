package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

func TestBuildSeatsDefaultLayout(t *testing.T) {
	seats := BuildSeats(7, DefaultLayout)
	require.Len(t, seats, 180)

	// IDs are sequential from 1 and carry the show ID
	assert.Equal(t, uint64(1), seats[0].SeatID)
	assert.Equal(t, uint64(180), seats[179].SeatID)
	assert.Equal(t, uint64(7), seats[0].ShowID)

	// first row is PLATINUM A1..A10
	assert.Equal(t, "A", seats[0].RowLabel)
	assert.Equal(t, uint32(1), seats[0].Column)
	assert.Equal(t, model.SeatTypePlatinum, seats[0].SeatType)
	assert.Equal(t, uint32(45000), seats[0].PriceCents)
	assert.Equal(t, "A", seats[9].RowLabel)
	assert.Equal(t, uint32(10), seats[9].Column)

	// row labels continue across blocks: GOLD starts at E, SILVER at K
	assert.Equal(t, "E", seats[40].RowLabel)
	assert.Equal(t, model.SeatTypeGold, seats[40].SeatType)
	assert.Equal(t, uint32(30000), seats[40].PriceCents)
	assert.Equal(t, "K", seats[100].RowLabel)
	assert.Equal(t, model.SeatTypeSilver, seats[100].SeatType)
	assert.Equal(t, uint32(18000), seats[100].PriceCents)

	// last seat is the back-right SILVER corner
	last := seats[179]
	assert.Equal(t, "R", last.RowLabel)
	assert.Equal(t, uint32(10), last.Column)
}

func TestIndexToRowLabel(t *testing.T) {
	assert.Equal(t, "A", indexToRowLabel(0))
	assert.Equal(t, "Z", indexToRowLabel(25))
	assert.Equal(t, "AA", indexToRowLabel(26))
	assert.Equal(t, "AB", indexToRowLabel(27))
	assert.Equal(t, "", indexToRowLabel(-1))
}

func TestCatalogRegisterAndSeats(t *testing.T) {
	c := New()
	_, ok := c.Seats(1)
	assert.False(t, ok)

	seats := BuildSeats(1, DefaultLayout)
	c.Register(1, seats)
	got, ok := c.Seats(1)
	require.True(t, ok)
	assert.Len(t, got, 180)
	assert.Equal(t, uint64(1), got[0].SeatID)
}

func TestLayoutSections(t *testing.T) {
	c := New()
	c.Register(3, BuildSeats(3, DefaultLayout))

	sections, ok := c.Layout(3)
	require.True(t, ok)
	require.Len(t, sections, 3)

	// screen order: PLATINUM, GOLD, SILVER
	assert.Equal(t, model.SeatTypePlatinum, sections[0].SeatType)
	assert.Equal(t, 4, sections[0].Rows)
	assert.Equal(t, 10, sections[0].Columns)
	assert.Equal(t, uint32(45000), sections[0].PriceCents)
	assert.Len(t, sections[0].Seats, 40)

	assert.Equal(t, model.SeatTypeGold, sections[1].SeatType)
	assert.Equal(t, 6, sections[1].Rows)
	assert.Len(t, sections[1].Seats, 60)

	assert.Equal(t, model.SeatTypeSilver, sections[2].SeatType)
	assert.Equal(t, 8, sections[2].Rows)
	assert.Len(t, sections[2].Seats, 80)

	_, ok = c.Layout(99)
	assert.False(t, ok)
}
