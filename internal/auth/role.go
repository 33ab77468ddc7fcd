package auth

import "strings"

// Role is the global role carried in the token's role claim.  It gates routes
// coarsely via the policy table; per-project access is decided separately by
// the membership check.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a raw role string.  Unknown values are rejected so a
// forged or stale claim can never widen access.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleManager:
		return RoleManager, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }
