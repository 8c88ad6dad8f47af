// Package handler implements the HTTP endpoints.  Handlers bind the
// request, validate it, call the store and translate errors into the
// response taxonomy: 400 validation, 401/403 auth, 404 not found,
// 500 for anything else with a generic message (detail is logged, never
// returned).
package handler

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/queue"
)

// fieldErrors maps a field name to a human-readable problem, returned
// under "errors" in 400 validation responses.
type fieldErrors map[string]string

// AuditPublisher is the slice of the event publisher handlers need.
// A nil publisher disables auditing.
type AuditPublisher interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// getUserID returns the authenticated user's id from the context, or
// zero when the route ran without the session gate.
func getUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil
}

// publishAudit emits an audit event, ignoring broker failures beyond
// the publisher's own logging.
func publishAudit(p AuditPublisher, c echo.Context, action, entity, entityID string) {
	if p == nil {
		return
	}
	ev := queue.AuditEvent{
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		ActorID:    getUserID(c),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.Publish(c.Request().Context(), ev); err != nil {
		log.Printf("handler: audit publish %s failed: %v", action, err)
	}
}
