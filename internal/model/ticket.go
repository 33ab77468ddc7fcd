package model

import "time"

// Ticket statuses observed in clients.  The column is a free-form string and
// transitions are unconstrained; these constants are a convention, not an
// enum the server enforces.
const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN_PROGRESS"
	TicketStatusDone       = "DONE"
)

// Ticket mirrors the 'tickets' table.  Position is a caller-assigned ordering
// key; the server never renumbers.  AssignedUserID, when set, must reference
// a member of the owning board's project at write time.
type Ticket struct {
	ID             uint64
	Title          string
	Description    string
	Position       int
	Status         string
	StoryPoints    *int
	BoardID        uint64
	AssignedUserID *uint64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
