package repository

import (
	"context"
	"database/sql"

	"github.com/tracknest/ticket-tracker/internal/model"
)

type BoardRepo struct{ DB *sql.DB }

func NewBoardRepo(db *sql.DB) *BoardRepo { return &BoardRepo{DB: db} }

const boardColumns = "id,name,description,project_id,created_at,updated_at"

func scanBoard(row interface{ Scan(...any) error }) (model.Board, error) {
	var b model.Board
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.ProjectID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a board under the given project.
func (r *BoardRepo) Create(ctx context.Context, name, description string, projectID uint64) (model.Board, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO boards (name, description, project_id) VALUES (?,?,?)",
		name, description, projectID)
	if err != nil {
		return model.Board{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Board{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a board by id.
func (r *BoardRepo) GetByID(ctx context.Context, id uint64) (model.Board, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+boardColumns+" FROM boards WHERE id=? LIMIT 1", id)
	return scanBoard(row)
}

// ListAll returns every board; admin listing.
func (r *BoardRepo) ListAll(ctx context.Context) ([]model.Board, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+boardColumns+" FROM boards ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBoards(rows)
}

// ListByMember returns boards whose owning project has the username as a
// member; the membership scope is applied in SQL.
func (r *BoardRepo) ListByMember(ctx context.Context, username string) ([]model.Board, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT b.id, b.name, b.description, b.project_id, b.created_at, b.updated_at
		FROM boards b
		JOIN project_members pm ON pm.project_id = b.project_id
		JOIN users u ON u.id = pm.user_id
		WHERE u.username = ?
		ORDER BY b.id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBoards(rows)
}

// ListByProject returns the boards owned by one project.
func (r *BoardRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Board, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+boardColumns+" FROM boards WHERE project_id=? ORDER BY id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBoards(rows)
}

// Update rewrites the board, including its owning project.  Re-parenting a
// board implicitly re-parents the authorization scope of all its tickets:
// membership checks always walk board->project at request time.
func (r *BoardRepo) Update(ctx context.Context, id uint64, name, description string, projectID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE boards SET name=?, description=?, project_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		name, description, projectID, id)
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

// Delete removes a board and its tickets in one transaction.  The parent
// project is untouched.
func (r *BoardRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tickets WHERE board_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM boards WHERE id=?", id)
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
	return tx.Commit()
}

func collectBoards(rows *sql.Rows) ([]model.Board, error) {
	out := []model.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
