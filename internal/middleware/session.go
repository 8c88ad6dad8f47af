// Package middleware provides the request gates applied in front of
// protected routes: session authentication, role authorization and
// credential-endpoint rate limiting.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
)

// SessionCookie is the name of the cookie carrying the session id.
// Kept as "connect.sid" for compatibility with existing frontends.
const SessionCookie = "connect.sid"

// SessionReader is the slice of the session store the gate needs.
type SessionReader interface {
	Get(ctx context.Context, id string) (model.Session, error)
}

// UserReader is the slice of the user store the gate needs.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RequireSession authenticates the request from its session cookie.
// On success it stores "user_id", "role" and "session_id" in the Echo
// context and continues; otherwise it halts with 401.  The role is
// re-read from the user record on every request rather than trusted
// from the session snapshot, so role changes apply without re-login.
func RequireSession(sessions SessionReader, users UserReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(SessionCookie)
			if err != nil || ck.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}
			ctx := c.Request().Context()

			s, err := sessions.Get(ctx, ck.Value)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
			}

			u, err := users.GetByID(ctx, s.UserID)
			if err != nil {
				// A session whose user vanished is no session at all.
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
			}

			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			c.Set("session_id", s.ID)
			return next(c)
		}
	}
}
