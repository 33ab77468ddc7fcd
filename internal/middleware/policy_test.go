package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tracknest/ticket-tracker/internal/auth"
)

var (
	anon    = auth.Principal{}
	user    = auth.Principal{Username: "u", Role: auth.RoleUser}
	manager = auth.Principal{Username: "m", Role: auth.RoleManager}
	admin   = auth.Principal{Username: "a", Role: auth.RoleAdmin}
)

func TestPermitted(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		principal auth.Principal
		want      bool
	}{
		{"authenticate is public", http.MethodPost, "/api/v1/auth/authenticate", anon, true},
		{"healthz is public", http.MethodGet, "/healthz", anon, true},
		{"metrics is public", http.MethodGet, "/metrics", anon, true},
		{"docs is public", http.MethodGet, "/api/v1/docs", anon, true},

		{"register denied to user", http.MethodPost, "/api/v1/auth/register", user, false},
		{"register denied to manager", http.MethodPost, "/api/v1/auth/register", manager, false},
		{"register allowed to admin", http.MethodPost, "/api/v1/auth/register", admin, true},
		{"user listing admin only", http.MethodGet, "/api/v1/auth/users", manager, false},
		{"user update admin only", http.MethodPut, "/api/v1/auth/users/3", user, false},
		{"user delete admin only", http.MethodDelete, "/api/v1/auth/users/3", admin, true},
		{"profile picture rides the fallback", http.MethodPatch, "/api/v1/auth/users/profile-picture", user, true},

		{"project create admin only", http.MethodPost, "/api/v1/projects", manager, false},
		{"project create allowed to admin", http.MethodPost, "/api/v1/projects", admin, true},
		{"project read open to user", http.MethodGet, "/api/v1/projects/5", user, true},
		{"project read denied anonymous", http.MethodGet, "/api/v1/projects/5", anon, false},
		{"project update denied to user", http.MethodPut, "/api/v1/projects/5", user, false},
		{"project update allowed to manager", http.MethodPut, "/api/v1/projects/5", manager, true},
		{"project delete denied to manager", http.MethodDelete, "/api/v1/projects/5", manager, false},
		{"project delete allowed to admin", http.MethodDelete, "/api/v1/projects/5", admin, true},
		{"member add is a project POST", http.MethodPost, "/api/v1/projects/5/users/9", manager, false},
		{"member add allowed to admin", http.MethodPost, "/api/v1/projects/5/users/9", admin, true},
		{"member remove is a project DELETE", http.MethodDelete, "/api/v1/projects/5/users/9", manager, false},

		{"board create open to user", http.MethodPost, "/api/v1/boards", user, true},
		{"board create allowed to manager", http.MethodPost, "/api/v1/boards", manager, true},
		{"board update denied to user", http.MethodPut, "/api/v1/boards/2", user, false},
		{"board read open to user", http.MethodGet, "/api/v1/boards/2", user, true},
		{"board delete denied to user", http.MethodDelete, "/api/v1/boards/2", user, false},

		{"ticket create open to user", http.MethodPost, "/api/v1/tickets", user, true},
		{"ticket update open to user", http.MethodPut, "/api/v1/tickets/8", user, true},
		{"ticket delete denied to user", http.MethodDelete, "/api/v1/tickets/8", user, false},
		{"ticket delete allowed to manager", http.MethodDelete, "/api/v1/tickets/8", manager, true},
		{"ticket read denied anonymous", http.MethodGet, "/api/v1/tickets", anon, false},

		{"unmatched route needs authentication", http.MethodGet, "/api/v1/unknown", anon, false},
		{"unmatched route open to any role", http.MethodGet, "/api/v1/unknown", user, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Permitted(tc.method, tc.path, tc.principal))
		})
	}
}

func policyRequest(t *testing.T, method, path string, p auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !p.Anonymous() {
		auth.SetPrincipal(c, p)
	}
	handler := RoutePolicy()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, handler(c))
	return rec
}

func TestRoutePolicyStatusCodes(t *testing.T) {
	// Anonymous denial means missing credentials, not missing permission.
	rec := policyRequest(t, http.MethodGet, "/api/v1/projects", anon)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = policyRequest(t, http.MethodPost, "/api/v1/projects", user)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = policyRequest(t, http.MethodGet, "/api/v1/projects", user)
	assert.Equal(t, http.StatusOK, rec.Code)
}
