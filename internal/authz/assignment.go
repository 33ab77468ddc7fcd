package authz

import (
	"context"
	"errors"

	"github.com/tracknest/ticket-tracker/internal/model"
)

// ErrUserNotInProject is returned when a ticket assignee exists but is not a
// member of the owning board's project.  The assignment is rejected outright:
// it is never silently dropped and membership is never silently widened.
var ErrUserNotInProject = errors.New("user not in project")

// UserLookup is the slice of the user repository the validator needs.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ResolveAssignee validates a candidate assignee against the project that
// owns the ticket's board.  A nil id is always valid and clears the
// assignment.  A non-nil id must reference an existing user (lookup errors,
// including not-found, pass through) who is a current member of the project.
// The check runs on every write that supplies an assignee, so a stale client
// cannot refresh an already-invalid assignment by resubmitting the same
// payload.
func ResolveAssignee(ctx context.Context, users UserLookup, id *uint64, project *model.Project) (*model.User, error) {
	if id == nil {
		return nil, nil
	}
	u, err := users.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if project == nil || !project.HasMemberID(u.ID) {
		return nil, ErrUserNotInProject
	}
	return &u, nil
}
