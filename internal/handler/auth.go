package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/config"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/middleware"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/utils"
)

// UserStore is the user persistence surface the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionStore is the session persistence surface the auth endpoints need.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, role string, ttl time.Duration) (model.Session, error)
	Get(ctx context.Context, id string) (model.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Audit    AuditPublisher
}

func NewAuthHandler(cfg config.Config, users UserStore, sessions SessionStore, audit AuditPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions, Audit: audit}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Role is accepted but ignored: registration always produces a
	// plain user account.
	Role string `json:"role"`
}

// Register creates a user account and starts a session for it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Validation error",
			"errors":  fieldErrors{"username": "username and password are required"},
		})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		log.Printf("auth: hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}

	ctx := c.Request().Context()
	u, err := h.Users.Create(ctx, req.Username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
		}
		log.Printf("auth: create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}

	s, err := h.Sessions.Create(ctx, u.ID, u.Role, h.Cfg.SessionTTL)
	if err != nil {
		log.Printf("auth: create session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during registration"})
	}
	setSessionCookie(c, s)

	publishAudit(h.Audit, c, "user.registered", "user", strconv.FormatUint(u.ID, 10))
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// Login verifies credentials and starts a session.  Unknown usernames
// and wrong passwords produce the identical response so the two cases
// cannot be told apart.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	ctx := c.Request().Context()

	u, err := h.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
		}
		log.Printf("auth: load user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during login"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
	}

	s, err := h.Sessions.Create(ctx, u.ID, u.Role, h.Cfg.SessionTTL)
	if err != nil {
		log.Printf("auth: create session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during login"})
	}
	setSessionCookie(c, s)

	publishAudit(h.Audit, c, "user.login", "user", strconv.FormatUint(u.ID, 10))
	return c.JSON(http.StatusOK, echo.Map{"message": "Login successful"})
}

// Logout destroys the current session, if any, and clears the cookie.
// Logging out without a session is still a success.
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(middleware.SessionCookie); err == nil && ck.Value != "" {
		if err := h.Sessions.Delete(c.Request().Context(), ck.Value); err != nil {
			log.Printf("auth: delete session: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error during logout"})
		}
		publishAudit(h.Audit, c, "user.logout", "session", ck.Value)
	}
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

// AuthStatus reports whether the request carries a live session and the
// current role.  The role comes from the user record, not the session
// snapshot, like the session gate.
func (h *AuthHandler) AuthStatus(c echo.Context) error {
	ck, err := c.Cookie(middleware.SessionCookie)
	if err != nil || ck.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	ctx := c.Request().Context()

	s, err := h.Sessions.Get(ctx, ck.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	u, err := h.Users.GetByID(ctx, s.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "role": u.Role})
}

func setSessionCookie(c echo.Context, s model.Session) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt) / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
