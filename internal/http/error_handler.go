package http

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/http/middleware"
	apperrors "storefront/pkg/errors"

	"github.com/labstack/echo/v4"
)

// CustomHTTPErrorHandler handles all errors returned by handlers and middleware.
// It maps sentinel errors to status codes, hides internal error text and logs
// with the request-scoped logger.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = http.StatusNotFound
			message = "Resource not found"
		case errors.Is(err, apperrors.ErrUnauthorized):
			code = http.StatusUnauthorized
			message = "Authentication required"
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			message = "Invalid credentials"
		case errors.Is(err, apperrors.ErrForbidden):
			code = http.StatusForbidden
			message = "Forbidden"
		case errors.Is(err, apperrors.ErrBadRequest):
			code = http.StatusBadRequest
			message = "Bad request"
		case errors.Is(err, apperrors.ErrValidation):
			code = http.StatusBadRequest
			message = "Validation error"
		case errors.Is(err, apperrors.ErrConflict):
			code = http.StatusConflict
			message = "Resource already exists"
		case errors.Is(err, apperrors.ErrEmailExists):
			code = http.StatusConflict
			message = "Email already registered"
		case errors.Is(err, apperrors.ErrRateLimited):
			code = http.StatusTooManyRequests
			message = "Too many requests"
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && code < http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = "unknown"
	}

	logger := middleware.Logger(c)
	if code >= http.StatusInternalServerError {
		logger.Error("internal_server_error", "status", code, "error", err.Error())
		message = "Internal server error"
	} else {
		logger.Warn("client_error", "status", code, "error", err.Error())
	}

	if err := c.JSON(code, map[string]any{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}
