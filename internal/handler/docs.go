package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// endpointDoc is one row of the machine-readable API listing.
type endpointDoc struct {
	Method string   `json:"method"`
	Path   string   `json:"path"`
	Roles  []string `json:"roles"` // empty means any authenticated user
	Public bool     `json:"public,omitempty"`
	About  string   `json:"about"`
}

type serviceDoc struct {
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	Endpoints []endpointDoc `json:"endpoints"`
}

var apiDoc = serviceDoc{
	Name:    "ticket-tracker",
	Version: "v1",
	Endpoints: []endpointDoc{
		{Method: "POST", Path: "/api/v1/auth/authenticate", Public: true, About: "exchange credentials for a bearer token"},
		{Method: "POST", Path: "/api/v1/auth/register", Roles: []string{"ADMIN"}, About: "create an account"},
		{Method: "GET", Path: "/api/v1/auth/me", About: "current user's record"},
		{Method: "PATCH", Path: "/api/v1/auth/users/profile-picture", About: "set own profile picture"},
		{Method: "GET", Path: "/api/v1/auth/users", Roles: []string{"ADMIN"}, About: "list accounts"},
		{Method: "PUT", Path: "/api/v1/auth/users/:id", Roles: []string{"ADMIN"}, About: "update an account"},
		{Method: "DELETE", Path: "/api/v1/auth/users/:id", Roles: []string{"ADMIN"}, About: "delete an account"},

		{Method: "POST", Path: "/api/v1/projects", Roles: []string{"ADMIN"}, About: "create a project"},
		{Method: "GET", Path: "/api/v1/projects", About: "list visible projects"},
		{Method: "GET", Path: "/api/v1/projects/:id", About: "fetch one project"},
		{Method: "PUT", Path: "/api/v1/projects/:id", Roles: []string{"MANAGER", "ADMIN"}, About: "update a project"},
		{Method: "DELETE", Path: "/api/v1/projects/:id", Roles: []string{"ADMIN"}, About: "delete a project and everything under it"},
		{Method: "GET", Path: "/api/v1/projects/:projectId/members", About: "list project members"},
		{Method: "POST", Path: "/api/v1/projects/:projectId/users/:userId", Roles: []string{"ADMIN"}, About: "add a member"},
		{Method: "DELETE", Path: "/api/v1/projects/:projectId/users/:userId", Roles: []string{"ADMIN"}, About: "remove a member"},

		{Method: "POST", Path: "/api/v1/boards", About: "create a board"},
		{Method: "GET", Path: "/api/v1/boards", About: "list visible boards"},
		{Method: "GET", Path: "/api/v1/boards/:id", About: "fetch one board"},
		{Method: "PUT", Path: "/api/v1/boards/:id", Roles: []string{"MANAGER", "ADMIN"}, About: "update a board"},
		{Method: "DELETE", Path: "/api/v1/boards/:id", Roles: []string{"MANAGER", "ADMIN"}, About: "delete a board and its tickets"},
		{Method: "GET", Path: "/api/v1/boards/by-project/:projectId", About: "list a project's boards"},

		{Method: "POST", Path: "/api/v1/tickets", About: "create a ticket"},
		{Method: "GET", Path: "/api/v1/tickets", About: "list visible tickets"},
		{Method: "GET", Path: "/api/v1/tickets/:id", About: "fetch one ticket"},
		{Method: "PUT", Path: "/api/v1/tickets/:id", About: "update a ticket"},
		{Method: "DELETE", Path: "/api/v1/tickets/:id", Roles: []string{"MANAGER", "ADMIN"}, About: "delete a ticket"},
		{Method: "GET", Path: "/api/v1/tickets/by-board/:boardId", About: "list a board's tickets by position"},
	},
}

// Docs serves the static endpoint listing.  The route is public and a good
// candidate for the response cache.
func Docs(c echo.Context) error {
	return c.JSON(http.StatusOK, apiDoc)
}
