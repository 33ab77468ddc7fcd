// Package authz implements the resource-level authorization layer: the
// membership check that decides whether a principal may touch a specific
// project, and the assignment validator that keeps ticket assignees inside
// the owning project's member set.  It is deliberately separate from the
// route policy table — the table answers "may a USER reach boards at all",
// this package answers "may this user touch this project's boards".
package authz

import (
	"errors"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/model"
)

// ErrAccessDenied is returned when a principal is neither an admin nor a
// member of the target project.  Handlers translate it into HTTP 403.
var ErrAccessDenied = errors.New("access denied")

// ValidateAccess decides whether the principal may operate on the project.
// ADMIN passes unconditionally.  Everyone else must appear in the project's
// member set.  An anonymous principal should never reach this check (the
// resolver and policy table run first), but is denied rather than trusted.
func ValidateAccess(p auth.Principal, project *model.Project) error {
	if p.Anonymous() {
		return ErrAccessDenied
	}
	if p.Role == auth.RoleAdmin {
		return nil
	}
	if project != nil && project.HasMember(p.Username) {
		return nil
	}
	return ErrAccessDenied
}

// IsAdmin reports whether the principal holds the ADMIN role.  List handlers
// use it to choose between the unrestricted query and the membership-scoped
// one; the filtering itself happens in SQL, not in memory.
func IsAdmin(p auth.Principal) bool {
	return p.IsAdmin()
}
