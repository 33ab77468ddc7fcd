// Package bootstrap performs one-time startup provisioning.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/config"
	"github.com/tracknest/ticket-tracker/internal/repository"
)

// EnsureAdmin creates the configured admin account if no account with that
// username exists yet.  It is idempotent so restarts are safe, and it never
// overwrites an existing account's password or role.
func EnsureAdmin(ctx context.Context, users *repository.UserRepo, cfg config.Config) error {
	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil // already provisioned
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("bootstrap admin lookup: %w", err)
	}

	_, err = users.Create(ctx, "System", "Admin", cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, auth.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		// A concurrent replica may have won the race; that still leaves the
		// account in place, which is all we need.
		if errors.Is(err, repository.ErrUsernameExists) || errors.Is(err, repository.ErrEmailExists) {
			return nil
		}
		return fmt.Errorf("bootstrap admin create: %w", err)
	}
	return nil
}
