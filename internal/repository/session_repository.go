package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
)

// SessionRepo persists login sessions.  Sessions live in the database
// so they survive process restarts; expiry is enforced on read and
// expired rows are removed lazily.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create generates an opaque session id and stores the session with a
// fixed (non-sliding) expiry.  The role recorded here is a snapshot at
// creation time; gates re-read the role from the user record.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, role string, ttl time.Duration) (model.Session, error) {
	now := time.Now().UTC()
	s := model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, role, expires_at) VALUES (?, ?, ?, ?)",
		s.ID, s.UserID, s.Role, s.ExpiresAt)
	if err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// Get returns the session for id, or ErrNotFound when the id is unknown
// or the session has expired.  Expired rows are deleted on the way out.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, role, expires_at, created_at FROM sessions WHERE id = ? LIMIT 1", id).
		Scan(&s.ID, &s.UserID, &s.Role, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	if s.Expired() {
		_, _ = r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
		return model.Session{}, ErrNotFound
	}
	return s, nil
}

// Delete destroys a session.  Deleting an unknown id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteExpired removes all expired sessions and returns the count.
// Called once at startup; during normal operation Get cleans up lazily.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
