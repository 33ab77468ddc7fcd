// Package queue defines message payloads exchanged over the message broker.
package queue

// Audit event types published by the API.
const (
	EventTicketAssigned = "ticket.assigned"
	EventProjectDeleted = "project.deleted"
	EventMemberAdded    = "member.added"
	EventMemberRemoved  = "member.removed"
)

// AuditEvent is published whenever an authorization-sensitive mutation
// succeeds: ticket assignments, membership edits and project deletions.  It
// carries enough information for downstream consumers to build an audit trail
// without querying the primary database.  Fields irrelevant to a given event
// type are left zero.
type AuditEvent struct {
	Type             string `json:"type"`
	Actor            string `json:"actor"` // username performing the mutation
	ProjectID        uint64 `json:"project_id,omitempty"`
	ProjectName      string `json:"project_name,omitempty"`
	BoardID          uint64 `json:"board_id,omitempty"`
	TicketID         uint64 `json:"ticket_id,omitempty"`
	TicketTitle      string `json:"ticket_title,omitempty"`
	MemberID         uint64 `json:"member_id,omitempty"`
	MemberUsername   string `json:"member_username,omitempty"`
	AssigneeID       uint64 `json:"assignee_id,omitempty"`
	AssigneeUsername string `json:"assignee_username,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}
