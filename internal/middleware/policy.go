package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/respond"
)

// policyRule is one entry in the route policy table: an HTTP method, a path
// prefix and the set of roles allowed through.  Public rules let anonymous
// requests pass.  The table is the only place coarse, route-level role gating
// happens; it deliberately cannot express per-resource decisions — those
// belong to the membership check inside handlers.
type policyRule struct {
	method string
	prefix string
	public bool
	roles  []auth.Role
}

func allow(roles ...auth.Role) []auth.Role { return roles }

// policyTable is consulted top to bottom; the first rule whose method and
// prefix match decides the request.  An unmatched route falls back to
// "authenticated, any role" — least privilege for anything a new route (or a
// new role) forgets to register.
var policyTable = []policyRule{
	// Public surface: login, liveness, metrics, service descriptor.
	{method: http.MethodPost, prefix: "/api/v1/auth/authenticate", public: true},
	{method: http.MethodGet, prefix: "/healthz", public: true},
	{method: http.MethodGet, prefix: "/metrics", public: true},
	{method: http.MethodGet, prefix: "/api/v1/docs", public: true},

	// Account management is an admin concern; registration included.
	{method: http.MethodPost, prefix: "/api/v1/auth/register", roles: allow(auth.RoleAdmin)},
	{method: http.MethodGet, prefix: "/api/v1/auth/users", roles: allow(auth.RoleAdmin)},
	{method: http.MethodPut, prefix: "/api/v1/auth/users", roles: allow(auth.RoleAdmin)},
	{method: http.MethodDelete, prefix: "/api/v1/auth/users", roles: allow(auth.RoleAdmin)},
	// PATCH /api/v1/auth/users/profile-picture is intentionally absent: it is
	// self-service and rides the authenticated-any-role fallback.

	{method: http.MethodPost, prefix: "/api/v1/projects", roles: allow(auth.RoleAdmin)},
	{method: http.MethodGet, prefix: "/api/v1/projects", roles: allow(auth.RoleUser, auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodPut, prefix: "/api/v1/projects", roles: allow(auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodDelete, prefix: "/api/v1/projects", roles: allow(auth.RoleAdmin)},

	// Board creation is open to every role; the membership check in the
	// handler decides whether the caller may touch the target project.
	{method: http.MethodPost, prefix: "/api/v1/boards", roles: allow(auth.RoleUser, auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodGet, prefix: "/api/v1/boards", roles: allow(auth.RoleUser, auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodPut, prefix: "/api/v1/boards", roles: allow(auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodDelete, prefix: "/api/v1/boards", roles: allow(auth.RoleManager, auth.RoleAdmin)},

	{method: http.MethodPost, prefix: "/api/v1/tickets", roles: allow(auth.RoleUser, auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodGet, prefix: "/api/v1/tickets", roles: allow(auth.RoleUser, auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodPut, prefix: "/api/v1/tickets", roles: allow(auth.RoleUser, auth.RoleManager, auth.RoleAdmin)},
	{method: http.MethodDelete, prefix: "/api/v1/tickets", roles: allow(auth.RoleManager, auth.RoleAdmin)},
}

// Permitted reports whether the principal may reach the given method and
// path at all.  First match wins; unmatched paths require any authenticated
// principal.
func Permitted(method, path string, p auth.Principal) bool {
	for _, r := range policyTable {
		if r.method != method || !strings.HasPrefix(path, r.prefix) {
			continue
		}
		if r.public {
			return true
		}
		if p.Anonymous() {
			return false
		}
		for _, role := range r.roles {
			if p.Role == role {
				return true
			}
		}
		return false
	}
	return !p.Anonymous()
}

// RoutePolicy enforces the policy table after the principal resolver.  A
// denied anonymous request gets 401 (it lacks credentials, not permission);
// a denied authenticated request gets 403.
func RoutePolicy() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := auth.PrincipalFrom(c)
			if Permitted(c.Request().Method, c.Request().URL.Path, p) {
				return next(c)
			}
			if p.Anonymous() {
				return respond.Error(c, http.StatusUnauthorized, "authentication required")
			}
			return respond.Error(c, http.StatusForbidden, "insufficient role")
		}
	}
}
