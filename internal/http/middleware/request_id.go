package middleware

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	RequestIDContextKey = "request_id"
	loggerContextKey    = "logger"
	maxRequestIDLength  = 128
)

// RequestID accepts or generates a request ID, echoes it in the response and
// stores a logger carrying it for handlers.
func RequestID(base *slog.Logger) echo.MiddlewareFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.NewString()
			}

			c.Set(RequestIDContextKey, requestID)
			c.Set(loggerContextKey, base.With("request_id", requestID))
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			return next(c)
		}
	}
}

// GetRequestID extracts the request ID from the context
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}

// Logger returns the request-scoped logger, or the default one outside a request.
func Logger(c echo.Context) *slog.Logger {
	if l, ok := c.Get(loggerContextKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// AccessLog writes one structured line per request.
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			Logger(c).Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"ip", c.RealIP(),
			)
			return nil
		}
	}
}
