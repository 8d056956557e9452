package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-seat-booking/internal/booking"
	"github.com/iliyamo/movie-seat-booking/internal/catalog"
	"github.com/iliyamo/movie-seat-booking/internal/hold"
	"github.com/iliyamo/movie-seat-booking/internal/ledger"
	"github.com/iliyamo/movie-seat-booking/internal/payment"
)

type scriptedCharger struct {
	outcome payment.Outcome
}

func (s *scriptedCharger) Charge(ctx context.Context, amountCents uint32, userRef string) (payment.Outcome, error) {
	return s.outcome, nil
}

// newFixture wires the full reservation stack over one default show
// with an always-approving payment gateway and no booking repo.
func newFixture(t *testing.T) (*ReservationHandler, *scriptedCharger) {
	t.Helper()
	cat := catalog.New()
	led := ledger.New()
	seats := catalog.BuildSeats(1, catalog.DefaultLayout)
	cat.Register(1, seats)
	require.NoError(t, led.RegisterShow(1, seats))
	hm := hold.NewManager(led, time.Minute, 10)
	ch := &scriptedCharger{outcome: payment.OutcomeApproved}
	orc := booking.NewOrchestrator(led, hm, ch, nil, nil, time.Second)
	return NewReservationHandler(led, hm, orc, cat, nil), ch
}

// doJSON runs a handler against an in-memory request.  userRef mimics a
// successful JWT middleware pass; empty means unauthenticated.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body, userRef string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userRef != "" {
		c.Set("user_ref", userRef)
	}
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	require.NoError(t, h(c))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetSeatStates(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.GetSeatStates, http.MethodGet, "/v1/shows/1/seats", "", "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["show_id"])
	seats, ok := body["seats"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, seats, 180)
}

func TestGetSeatStatesUnknownShow(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.GetSeatStates, http.MethodGet, "/v1/shows/9/seats", "", "", map[string]string{"id": "9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSeatStatesBadID(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.GetSeatStates, http.MethodGet, "/v1/shows/x/seats", "", "", map[string]string{"id": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLayout(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.GetLayout, http.MethodGet, "/v1/shows/1/layout", "", "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	sections, ok := body["sections"].([]any)
	require.True(t, ok)
	assert.Len(t, sections, 3)
}

func TestPlaceHold(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[1,2,3]}`, "user-1", map[string]string{"id": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["hold_token"])
	assert.NotEmpty(t, body["expires_at"])
	assert.Len(t, body["seat_ids"].([]any), 3)
}

func TestPlaceHoldUnauthenticated(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[1]}`, "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceHoldConflict(t *testing.T) {
	h, _ := newFixture(t)
	first := doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[5,6]}`, "user-1", map[string]string{"id": "1"})
	require.Equal(t, http.StatusCreated, first.Code)

	rec := doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[6,7]}`, "user-2", map[string]string{"id": "1"})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	unavailable, ok := body["unavailable"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{float64(6)}, unavailable)
}

func TestPlaceHoldSeatCount(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[]}`, "user-1", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[1,2,3,4,5,6,7,8,9,10,11]}`, "user-1", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtendAndCancelHold(t *testing.T) {
	h, _ := newFixture(t)
	created := doJSON(t, h.PlaceHold, http.MethodPost, "/v1/shows/1/holds",
		`{"seat_ids":[10]}`, "user-1", map[string]string{"id": "1"})
	require.Equal(t, http.StatusCreated, created.Code)
	token := decodeBody(t, created)["hold_token"].(string)

	rec := doJSON(t, h.ExtendHold, http.MethodPost, "/v1/holds/"+token+"/extend",
		`{"additional_seconds":60}`, "user-1", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["expires_at"])

	rec = doJSON(t, h.CancelHold, http.MethodDelete, "/v1/holds/"+token,
		"", "user-1", map[string]string{"token": token})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// cancellation is idempotent
	rec = doJSON(t, h.CancelHold, http.MethodDelete, "/v1/holds/"+token,
		"", "user-1", map[string]string{"token": token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestExtendUnknownHold(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.ExtendHold, http.MethodPost, "/v1/holds/nope/extend",
		"", "user-1", map[string]string{"token": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestBookingApproved(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.RequestBooking, http.MethodPost, "/v1/shows/1/bookings",
		`{"seat_ids":[1,2]}`, "user-1", map[string]string{"id": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["booking_id"])
	assert.Equal(t, "CONFIRMED", body["status"])
	// two PLATINUM seats
	assert.EqualValues(t, 90000, body["total_amount_cents"])
}

func TestRequestBookingDeclined(t *testing.T) {
	h, ch := newFixture(t)
	ch.outcome = payment.OutcomeDeclined
	rec := doJSON(t, h.RequestBooking, http.MethodPost, "/v1/shows/1/bookings",
		`{"seat_ids":[1]}`, "user-1", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestRequestBookingTimeout(t *testing.T) {
	h, ch := newFixture(t)
	ch.outcome = payment.OutcomeTimeout
	rec := doJSON(t, h.RequestBooking, http.MethodPost, "/v1/shows/1/bookings",
		`{"seat_ids":[1]}`, "user-1", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestRequestBookingConflict(t *testing.T) {
	h, _ := newFixture(t)
	first := doJSON(t, h.RequestBooking, http.MethodPost, "/v1/shows/1/bookings",
		`{"seat_ids":[1]}`, "user-1", map[string]string{"id": "1"})
	require.Equal(t, http.StatusCreated, first.Code)

	rec := doJSON(t, h.RequestBooking, http.MethodPost, "/v1/shows/1/bookings",
		`{"seat_ids":[1]}`, "user-2", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListBookingsWithoutRepo(t *testing.T) {
	h, _ := newFixture(t)
	rec := doJSON(t, h.ListBookings, http.MethodGet, "/v1/my-bookings", "", "user-1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, Health, http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
