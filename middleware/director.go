package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderDirectorPIN carries the tournament director secret.
const HeaderDirectorPIN = "X-TD-PIN"

const directorKey = "td_pin"

// Director copies the director secret from the X-TD-PIN header, or the
// tdPin query parameter for download links, into the request context.
// Checking it is left to the operation.
func Director() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			pin := strings.TrimSpace(c.Request().Header.Get(HeaderDirectorPIN))
			if pin == "" {
				pin = strings.TrimSpace(c.QueryParam("tdPin"))
			}
			c.Set(directorKey, pin)
			return next(c)
		}
	}
}

// DirectorPIN returns the secret stored by Director, or fallback when the
// request carried none.
func DirectorPIN(c echo.Context, fallback string) string {
	if pin, _ := c.Get(directorKey).(string); pin != "" {
		return pin
	}
	return strings.TrimSpace(fallback)
}
