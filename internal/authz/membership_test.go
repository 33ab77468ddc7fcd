package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/model"
)

func projectWithMembers(usernames ...string) *model.Project {
	p := &model.Project{ID: 1, Name: "demo"}
	for i, u := range usernames {
		p.Members = append(p.Members, model.User{ID: uint64(i + 1), Username: u})
	}
	return p
}

func TestValidateAccess(t *testing.T) {
	project := projectWithMembers("alice", "bob")

	tests := []struct {
		name      string
		principal auth.Principal
		wantErr   error
	}{
		{"admin bypasses membership", auth.Principal{Username: "root", Role: auth.RoleAdmin}, nil},
		{"member allowed", auth.Principal{Username: "alice", Role: auth.RoleUser}, nil},
		{"manager still needs membership", auth.Principal{Username: "carol", Role: auth.RoleManager}, ErrAccessDenied},
		{"non-member denied", auth.Principal{Username: "mallory", Role: auth.RoleUser}, ErrAccessDenied},
		{"anonymous denied", auth.Principal{}, ErrAccessDenied},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAccess(tc.principal, project)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidateAccessEmptyMemberSet(t *testing.T) {
	project := projectWithMembers()

	assert.NoError(t, ValidateAccess(auth.Principal{Username: "root", Role: auth.RoleAdmin}, project))
	assert.ErrorIs(t, ValidateAccess(auth.Principal{Username: "alice", Role: auth.RoleUser}, project), ErrAccessDenied)
}
