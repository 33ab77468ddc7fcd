package repository

import (
	"context"
	"database/sql"

	"github.com/tracknest/ticket-tracker/internal/model"
)

type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

const ticketColumns = "id,title,description,position,status,story_points,board_id,assigned_user_id,created_at,updated_at"

func scanTicket(row interface{ Scan(...any) error }) (model.Ticket, error) {
	var t model.Ticket
	var points sql.NullInt64
	var assignee sql.NullInt64
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Position, &t.Status,
		&points, &t.BoardID, &assignee, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Ticket{}, err
	}
	if points.Valid {
		v := int(points.Int64)
		t.StoryPoints = &v
	}
	if assignee.Valid {
		v := uint64(assignee.Int64)
		t.AssignedUserID = &v
	}
	return t, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullUint(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Create inserts a ticket.  The caller has already validated the assignee
// against the owning project's member set; the repository only persists.
func (r *TicketRepo) Create(ctx context.Context, t model.Ticket) (model.Ticket, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tickets (title, description, position, status, story_points, board_id, assigned_user_id) VALUES (?,?,?,?,?,?,?)",
		t.Title, t.Description, t.Position, t.Status, nullInt(t.StoryPoints), t.BoardID, nullUint(t.AssignedUserID))
	if err != nil {
		return model.Ticket{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Ticket{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a ticket by id.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id=? LIMIT 1", id)
	return scanTicket(row)
}

// ListAll returns every ticket; admin listing.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

// ListByMember returns tickets reachable through the username's project
// memberships, scoped in SQL.
func (r *TicketRepo) ListByMember(ctx context.Context, username string) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.title, t.description, t.position, t.status, t.story_points, t.board_id, t.assigned_user_id, t.created_at, t.updated_at
		FROM tickets t
		JOIN boards b ON b.id = t.board_id
		JOIN project_members pm ON pm.project_id = b.project_id
		JOIN users u ON u.id = pm.user_id
		WHERE u.username = ?
		ORDER BY t.id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

// ListByBoard returns every ticket on a board; admin listing.
func (r *TicketRepo) ListByBoard(ctx context.Context, boardID uint64) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE board_id=? ORDER BY position, id", boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

// ListByBoardAndMember returns a board's tickets only when the username is a
// member of the board's project.
func (r *TicketRepo) ListByBoardAndMember(ctx context.Context, boardID uint64, username string) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.title, t.description, t.position, t.status, t.story_points, t.board_id, t.assigned_user_id, t.created_at, t.updated_at
		FROM tickets t
		JOIN boards b ON b.id = t.board_id
		JOIN project_members pm ON pm.project_id = b.project_id
		JOIN users u ON u.id = pm.user_id
		WHERE t.board_id = ? AND u.username = ?
		ORDER BY t.position, t.id`, boardID, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

// Update rewrites the full ticket row.  updated_at is bumped in the statement
// so the driver's changed-rows count stays non-zero even when the client
// resubmits an identical payload; zero affected rows therefore always means
// the row is missing.
func (r *TicketRepo) Update(ctx context.Context, t model.Ticket) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tickets SET title=?, description=?, position=?, status=?, story_points=?, board_id=?, assigned_user_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		t.Title, t.Description, t.Position, t.Status, nullInt(t.StoryPoints), t.BoardID, nullUint(t.AssignedUserID), t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a ticket.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tickets WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func collectTickets(rows *sql.Rows) ([]model.Ticket, error) {
	out := []model.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
