package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
)

// ErrUsernameExists is returned when a registration collides with an
// existing username (unique key on users.username).
var ErrUsernameExists = errors.New("username already exists")

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, password_hash, role, created_at, updated_at"

// Create inserts a new user with role 'user'.  The role in any request
// body is deliberately ignored; admin accounts are minted by the seed
// command only.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (model.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)",
		username, passwordHash, model.RoleUser)
	if err != nil {
		// MySQL 1062 = duplicate entry for a unique key
		if strings.Contains(err.Error(), "1062") {
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// EnsureAdmin creates or updates an admin account with the given
// credentials.  Used by the seed command; registration can never
// produce an admin.
func (r *UserRepo) EnsureAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, 'admin')
		 ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash), role = 'admin'`,
		username, passwordHash)
	return err
}
