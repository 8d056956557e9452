package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/handler"
	"github.com/iliyamo/movie-seat-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterReservation registers the reservation endpoints.  Read-only
// seat projections are public so guests can browse a show before
// logging in; every mutating endpoint requires a valid access token
// issued by the external identity provider.  The optional middlewares
// are applied when non-nil: cacheMW fronts the static layout endpoint,
// limitMW rate limits the mutating routes.
func RegisterReservation(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, cacheMW, limitMW echo.MiddlewareFunc) {
	// Public read projections.
	e.GET("/v1/shows/:id/seats", h.GetSeatStates)
	if cacheMW != nil {
		e.GET("/v1/shows/:id/layout", h.GetLayout, cacheMW)
	} else {
		e.GET("/v1/shows/:id/layout", h.GetLayout)
	}

	// Authenticated, mutating endpoints.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	if limitMW != nil {
		auth.Use(limitMW)
	}
	auth.POST("/shows/:id/holds", h.PlaceHold)
	auth.POST("/holds/:token/extend", h.ExtendHold)
	auth.DELETE("/holds/:token", h.CancelHold)
	auth.POST("/shows/:id/bookings", h.RequestBooking)
	auth.GET("/my-bookings", h.ListBookings)
}
