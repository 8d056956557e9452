package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/booking"
	"github.com/iliyamo/movie-seat-booking/internal/catalog"
	"github.com/iliyamo/movie-seat-booking/internal/hold"
	"github.com/iliyamo/movie-seat-booking/internal/ledger"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// ReservationHandler groups the reservation core's collaborators for
// the HTTP layer.  All mutating endpoints assume JWT authentication
// has already run; methods return 401 when the user reference cannot
// be extracted from the context.
type ReservationHandler struct {
	Ledger       *ledger.Ledger
	Holds        *hold.Manager
	Orchestrator *booking.Orchestrator
	Catalog      *catalog.Catalog
	BookingRepo  *repository.BookingRepo // nil disables the persisted booking list
}

// NewReservationHandler constructs a ReservationHandler.  BookingRepo
// may be nil when no database is configured.
func NewReservationHandler(l *ledger.Ledger, hm *hold.Manager, orc *booking.Orchestrator, cat *catalog.Catalog, repo *repository.BookingRepo) *ReservationHandler {
	if l == nil || hm == nil || orc == nil || cat == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Ledger: l, Holds: hm, Orchestrator: orc, Catalog: cat, BookingRepo: repo}
}

// GetSeatStates handles GET /v1/shows/:id/seats.  It returns the
// current state of every seat of the show keyed by seat ID.  The
// response is never cached: clients rely on it to pick a fresh seat
// set after a conflict.
func (h *ReservationHandler) GetSeatStates(c echo.Context) error {
	showID, ok := parseShowID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	states, err := h.Ledger.SeatStates(showID)
	if err != nil {
		if errors.Is(err, ledger.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat states"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id": showID,
		"seats":   states,
	})
}

// GetLayout handles GET /v1/shows/:id/layout.  It returns the static
// seat map grouped by seat type for rendering.  The layout never
// changes once a show is scheduled, so this endpoint sits behind the
// redis response cache.
func (h *ReservationHandler) GetLayout(c echo.Context) error {
	showID, ok := parseShowID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	sections, ok := h.Catalog.Layout(showID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":  showID,
		"sections": sections,
	})
}

// PlaceHold handles POST /v1/shows/:id/holds.  The request body must
// contain a "seat_ids" array.  On success it returns 201 with the
// hold token and expiry; when any requested seat is taken it returns
// 409 with the list of unavailable seat IDs so the client can refresh
// its seat map.
func (h *ReservationHandler) PlaceHold(c echo.Context) error {
	if _, err := getUserRef(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := parseShowID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hld, err := h.Holds.Place(c.Request().Context(), showID, body.SeatIDs)
	if err != nil {
		return holdErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hold_token": hld.Token,
		"seat_ids":   hld.SeatIDs,
		"expires_at": hld.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// ExtendHold handles POST /v1/holds/:token/extend.  The optional body
// field "additional_seconds" controls the renewal; when omitted the
// hold is renewed by one full TTL.
func (h *ReservationHandler) ExtendHold(c echo.Context) error {
	if _, err := getUserRef(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hold token"})
	}
	var body struct {
		AdditionalSeconds int `json:"additional_seconds"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hld, err := h.Holds.Extend(c.Request().Context(), token, time.Duration(body.AdditionalSeconds)*time.Second)
	if err != nil {
		return holdErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hold_token": hld.Token,
		"expires_at": hld.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// CancelHold handles DELETE /v1/holds/:token.  Cancellation is
// idempotent: releasing an unknown or already settled hold still
// returns 204.
func (h *ReservationHandler) CancelHold(c echo.Context) error {
	if _, err := getUserRef(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing hold token"})
	}
	if err := h.Holds.Cancel(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel hold"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestBooking handles POST /v1/shows/:id/bookings, the sole
// mutating entry point for purchases.  It places a hold, runs the
// payment step and either confirms the booking or releases the seats.
func (h *ReservationHandler) RequestBooking(c echo.Context) error {
	userRef, err := getUserRef(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := parseShowID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Orchestrator.RequestBooking(c.Request().Context(), showID, body.SeatIDs, userRef)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrPaymentFailed):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment declined"})
		case errors.Is(err, booking.ErrPaymentTimeout):
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "payment timed out"})
		default:
			return holdErrorResponse(c, err)
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// ListBookings handles GET /v1/my-bookings.  It returns the persisted
// bookings of the authenticated user, newest first.
func (h *ReservationHandler) ListBookings(c echo.Context) error {
	userRef, err := getUserRef(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.BookingRepo == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking history unavailable"})
	}
	items, err := h.BookingRepo.ListByUserRef(c.Request().Context(), userRef)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// holdErrorResponse maps ledger and hold-manager errors to HTTP
// responses.  Unavailable seats are always listed so the UI can
// refresh the seat map.
func holdErrorResponse(c echo.Context, err error) error {
	var unavailable *ledger.SeatsUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable.SeatIDs,
		})
	case errors.Is(err, hold.ErrSeatCount), errors.Is(err, ledger.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids must contain between 1 and 10 seats"})
	case errors.Is(err, ledger.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, ledger.ErrHoldNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
	case errors.Is(err, ledger.ErrHoldExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
