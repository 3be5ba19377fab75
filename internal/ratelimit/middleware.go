package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerRetry     = "Retry-After"

	msgTooManyRequests = "Too many requests. Please try again later."
)

// KeyFunc derives the counter key from a request.
type KeyFunc func(c echo.Context) string

// ByIP keys requests by the client address echo resolved.
func ByIP(scope string) KeyFunc {
	return func(c echo.Context) string {
		return scope + ":" + c.RealIP()
	}
}

// Middleware rejects requests over the limit with 429. Limiter failures are
// logged and the request is let through.
func Middleware(l Limiter, key KeyFunc, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			k := key(c)
			res, err := l.Allow(c.Request().Context(), k)
			if err != nil {
				logger.Error("rate limiter unavailable", "key", k, "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set(headerLimit, strconv.Itoa(res.Limit))
			h.Set(headerRemaining, strconv.Itoa(res.Remaining))

			if !res.Allowed {
				h.Set(headerRetry, strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				logger.Warn("rate limit exceeded", "key", k)
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": msgTooManyRequests})
			}
			return next(c)
		}
	}
}
