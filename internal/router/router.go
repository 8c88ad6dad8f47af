// Package router wires HTTP routes to handlers and attaches the gate
// middleware each route group requires.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/handler"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  The optional middleware
// (rate limiting) is applied to the credential endpoints only; logout
// and auth-status stay unthrottled.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, mw ...echo.MiddlewareFunc) {
	e.POST("/register", a.Register, mw...)
	e.POST("/login", a.Login, mw...)
	e.POST("/logout", a.Logout)
	e.GET("/auth-status", a.AuthStatus)
}

// RegisterStudents registers the student endpoints.  Reads require a
// session, writes additionally require the admin role.
func RegisterStudents(e *echo.Echo, h *handler.StudentHandler, sessions middleware.SessionReader, users middleware.UserReader) {
	g := e.Group("/students", middleware.RequireSession(sessions, users))
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	admin := middleware.RequireAdmin()
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
}

// RegisterDevices registers the device endpoints with the same gating
// as students, plus admin-only delete.
func RegisterDevices(e *echo.Echo, h *handler.DeviceHandler, sessions middleware.SessionReader, users middleware.UserReader) {
	g := e.Group("/devices", middleware.RequireSession(sessions, users))
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	admin := middleware.RequireAdmin()
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.DELETE("/:id", h.Delete, admin)
}
