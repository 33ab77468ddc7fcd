package model

import "time"

// Board mirrors the 'boards' table.  A board cannot exist without its owning
// project; authorization for a board is always resolved through ProjectID at
// check time, never cached on the board itself.
type Board struct {
	ID          uint64
	Name        string
	Description string
	ProjectID   uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
