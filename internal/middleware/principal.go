package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/respond"
)

// ResolvePrincipal returns the middleware that turns a bearer token into the
// request's principal.  It runs exactly once, before the route policy table.
//
// A missing Authorization header is not an error: the request proceeds with
// the anonymous principal and the policy table decides whether the target
// route tolerates that.  A present but invalid token (malformed header,
// bad signature, expired, unknown role) short-circuits with 401 and never
// reaches a handler.
func ResolvePrincipal(codec *auth.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c) // anonymous; deferred to the policy table
			}
			if !strings.HasPrefix(header, "Bearer ") {
				return respond.Error(c, http.StatusUnauthorized, "invalid authorization header")
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			p, err := codec.Verify(raw)
			if err != nil {
				return respond.Error(c, http.StatusUnauthorized, "invalid or expired token")
			}
			auth.SetPrincipal(c, p)
			return next(c)
		}
	}
}
