package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/config"
)

// RateLimit returns a fixed-window limiter keyed on client IP and
// route, backed by Redis INCR/EXPIRE.  It protects the credential
// endpoints from brute forcing.  When disabled, or when Redis is
// unavailable (nil client or a runtime error), requests pass through:
// losing rate limiting must not take logins down with it.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.Path(), c.RealIP())

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}
			if n > int64(cfg.Limit) {
				return c.JSON(http.StatusTooManyRequests,
					echo.Map{"message": "Too many attempts, try again later"})
			}
			return next(c)
		}
	}
}
