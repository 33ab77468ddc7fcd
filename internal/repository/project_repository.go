package repository

import (
	"context"
	"database/sql"

	"github.com/tracknest/ticket-tracker/internal/model"
)

type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

const projectColumns = "id,name,description,created_at,updated_at"

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a project and returns it with its generated id.
func (r *ProjectRepo) Create(ctx context.Context, name, description string) (model.Project, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO projects (name, description) VALUES (?,?)", name, description)
	if err != nil {
		return model.Project{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Project{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a project together with its member set.  Every
// membership-gated handler goes through here, so each authorization decision
// sees current membership for the request, never a cached copy.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.Project, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id=? LIMIT 1", id)
	p, err := scanProject(row)
	if err != nil {
		return model.Project{}, err
	}
	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	p.Members = members
	return p, nil
}

// ListAll returns every project.  Reserved for admins; the scoped variant is
// ListByMember.
func (r *ProjectRepo) ListAll(ctx context.Context) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListByMember returns only projects the given username belongs to.  The
// scoping happens in SQL so non-members' rows never leave the database, not
// even to be filtered in memory.
func (r *ProjectRepo) ListByMember(ctx context.Context, username string) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		JOIN users u ON u.id = pm.user_id
		WHERE u.username = ?
		ORDER BY p.id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// Update rewrites name and description.
func (r *ProjectRepo) Update(ctx context.Context, id uint64, name, description string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET name=?, description=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", name, description, id)
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

// Delete removes a project and everything it exclusively owns: tickets on its
// boards, the boards themselves and the membership edges, all in one
// transaction.  Member users are a shared resource and are never deleted.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tickets WHERE board_id IN (SELECT id FROM boards WHERE project_id=?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM boards WHERE project_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM project_members WHERE project_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id=?", id)
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

// AddMember records the membership edge.  INSERT IGNORE plus the composite
// primary key makes the operation idempotent and atomic: two concurrent adds
// of the same pair cannot duplicate the edge or lose a concurrent edit on
// another pair.
func (r *ProjectRepo) AddMember(ctx context.Context, projectID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO project_members (project_id, user_id) VALUES (?,?)", projectID, userID)
	return err
}

// RemoveMember deletes the membership edge.  Removing an absent member is a
// no-op, not an error.  Tickets assigned to the removed user keep their
// assignee; subsequent writes that resubmit the assignment are rejected by
// the assignee validation.
func (r *ProjectRepo) RemoveMember(ctx context.Context, projectID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM project_members WHERE project_id=? AND user_id=?", projectID, userID)
	return err
}

// ListMembers returns the project's member set.
func (r *ProjectRepo) ListMembers(ctx context.Context, projectID uint64) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.firstname, u.lastname, u.username, u.email, u.password_hash, u.role, u.profile_image, u.created_at, u.updated_at
		FROM users u
		JOIN project_members pm ON pm.user_id = u.id
		WHERE pm.project_id = ?
		ORDER BY u.id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectProjects(rows *sql.Rows) ([]model.Project, error) {
	out := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
