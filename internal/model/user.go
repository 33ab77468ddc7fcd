package model

import (
	"time"

	"github.com/tracknest/ticket-tracker/internal/auth"
)

// User mirrors the 'users' table.  PasswordHash is never serialized; handlers
// map users into response DTOs that omit it.
type User struct {
	ID           uint64
	Firstname    string
	Lastname     string
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	ProfileImage *string // base64 payload, optional
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
