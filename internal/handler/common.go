package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserRef extracts the authenticated user's reference from the echo
// context.  It is populated by the JWT middleware from the token
// subject; identity itself is managed by an external provider.
func getUserRef(c echo.Context) (string, error) {
	if v, ok := c.Get("user_ref").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("missing user_ref in context")
}

// parseShowID parses the :id path parameter as a show ID.
func parseShowID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
