package model

import "time"

// Session represents a row in the `sessions` table.  The ID is the
// opaque value carried by the session cookie.  Role is a snapshot taken
// at session creation; request gates re-read the role from the user
// record, so a role change applies without re-login.
type Session struct {
	ID        string
	UserID    uint64
	Role      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session's lifetime has elapsed.
func (s Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}
