package model

import "time"

// Project mirrors the 'projects' table.  Members is the project's member set
// loaded through the project_members join table; it is the sole membership
// authority for every board and ticket beneath the project.
type Project struct {
	ID          uint64
	Name        string
	Description string
	Members     []User
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMember reports whether the given username is in the member set.
func (p *Project) HasMember(username string) bool {
	for _, u := range p.Members {
		if u.Username == username {
			return true
		}
	}
	return false
}

// HasMemberID reports whether the given user id is in the member set.
func (p *Project) HasMemberID(id uint64) bool {
	for _, u := range p.Members {
		if u.ID == id {
			return true
		}
	}
	return false
}
