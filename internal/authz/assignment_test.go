package authz

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/ticket-tracker/internal/model"
)

type fakeUserLookup struct {
	users map[uint64]model.User
	err   error
}

func (f *fakeUserLookup) GetByID(_ context.Context, id uint64) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func uptr(v uint64) *uint64 { return &v }

func TestResolveAssigneeNilClearsAssignment(t *testing.T) {
	u, err := ResolveAssignee(context.Background(), &fakeUserLookup{}, nil, projectWithMembers("alice"))
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestResolveAssigneeMember(t *testing.T) {
	lookup := &fakeUserLookup{users: map[uint64]model.User{1: {ID: 1, Username: "alice"}}}

	u, err := ResolveAssignee(context.Background(), lookup, uptr(1), projectWithMembers("alice"))
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
}

func TestResolveAssigneeUnknownUser(t *testing.T) {
	lookup := &fakeUserLookup{users: map[uint64]model.User{}}

	_, err := ResolveAssignee(context.Background(), lookup, uptr(42), projectWithMembers("alice"))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestResolveAssigneeNonMember(t *testing.T) {
	lookup := &fakeUserLookup{users: map[uint64]model.User{7: {ID: 7, Username: "mallory"}}}

	_, err := ResolveAssignee(context.Background(), lookup, uptr(7), projectWithMembers("alice", "bob"))
	assert.ErrorIs(t, err, ErrUserNotInProject)
}

func TestResolveAssigneeLookupErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := &fakeUserLookup{err: boom}

	_, err := ResolveAssignee(context.Background(), lookup, uptr(1), projectWithMembers("alice"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotInProject)
}

func TestResolveAssigneeNilProject(t *testing.T) {
	lookup := &fakeUserLookup{users: map[uint64]model.User{1: {ID: 1, Username: "alice"}}}

	_, err := ResolveAssignee(context.Background(), lookup, uptr(1), nil)
	assert.ErrorIs(t, err, ErrUserNotInProject)
}
