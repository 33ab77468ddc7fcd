// Package repository implements the data access layer over MySQL.  Lookups
// that find nothing return sql.ErrNoRows so handlers can translate them into
// 404s; the sentinel values below cover the remaining failure scenarios that
// higher layers need to tell apart.
package repository

import "errors"

// ErrUsernameExists is returned when registration or an admin update collides
// with an existing username.  Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when a user's email collides with an existing
// account.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
