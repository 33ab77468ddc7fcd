package auth

import "github.com/labstack/echo/v4"

// Principal is the authenticated identity attached to a request: the token's
// subject plus its role claim.  The zero value is the anonymous principal,
// used when no bearer token is presented; whether anonymous access is
// acceptable is decided downstream by the route policy table.
type Principal struct {
	Username string
	Role     Role
}

// Anonymous reports whether the principal carries no authenticated identity.
func (p Principal) Anonymous() bool { return p.Username == "" }

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool { return !p.Anonymous() && p.Role == RoleAdmin }

const principalKey = "principal"

// SetPrincipal binds the principal to the request context.  The binding is
// request-scoped; it is written once by the resolver middleware and read-only
// afterwards.
func SetPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal bound to the request, or the anonymous
// principal when the resolver has not run or found no token.
func PrincipalFrom(c echo.Context) Principal {
	if v, ok := c.Get(principalKey).(Principal); ok {
		return v
	}
	return Principal{}
}
