package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/model"
	"github.com/tracknest/ticket-tracker/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,firstname,lastname,username,email,password_hash,role,profile_image,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var role string
	var image sql.NullString
	err := row.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Username, &u.Email,
		&u.PasswordHash, &role, &image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = auth.Role(role)
	if image.Valid {
		u.ProfileImage = &image.String
	}
	return u, nil
}

// Create inserts a user and returns its ID.  The password is hashed here so
// plaintext never crosses the repository boundary.
func (r *UserRepo) Create(ctx context.Context, firstname, lastname, username, email, password string, role auth.Role, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (firstname, lastname, username, email, password_hash, role) VALUES (?,?,?,?,?,?)",
		firstname, lastname, username, email, hash, role.String())
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// List returns every account, ordered by id.  Admin-only at the route level.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Update rewrites a user's identity fields and role.
func (r *UserRepo) Update(ctx context.Context, id uint64, firstname, lastname, username, email string, role auth.Role) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET firstname=?, lastname=?, username=?, email=?, role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		firstname, lastname, username, email, role.String(), id)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "email") {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
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

// UpdateProfileImage stores the base64 payload for the given username.
func (r *UserRepo) UpdateProfileImage(ctx context.Context, username, image string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET profile_image=?, updated_at=CURRENT_TIMESTAMP WHERE username=?", image, username)
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

// Delete removes a user and every membership edge pointing at it in one
// transaction.  Projects, boards and tickets the user touched are untouched;
// stale ticket assignments are left as-is and get rejected the next time a
// write resubmits them.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_members WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// isDuplicate matches the MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
