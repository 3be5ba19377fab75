package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/domain/account"
	"storefront/internal/rbac"
	apperrors "storefront/pkg/errors"
	"storefront/pkg/password"
	"storefront/pkg/validator"

	"github.com/labstack/echo/v4"
)

// AccountHandler serves the endpoints that sit behind a role guard.
type AccountHandler struct {
	accounts     AccountStore
	audit        AuditRecorder
	logger       *slog.Logger
	storeTimeout time.Duration
	hashCost     int
}

func NewAccountHandler(accounts AccountStore, auditor AuditRecorder, logger *slog.Logger, cfg AuthHandlerConfig) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = password.DefaultCost
	}
	return &AccountHandler{
		accounts:     accounts,
		audit:        auditor,
		logger:       logger,
		storeTimeout: cfg.StoreTimeout,
		hashCost:     cfg.HashCost,
	}
}

type SessionResponse struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Scheme string `json:"scheme"`
}

type CreateManagerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type DepartmentSummaryResponse struct {
	Department string          `json:"department"`
	Viewer     SessionResponse `json:"viewer"`
	Managers   int             `json:"managers"`
}

func (h *AccountHandler) storeContext(c echo.Context) (context.Context, context.CancelFunc) {
	if h.storeTimeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.storeTimeout)
}

func sessionOf(c echo.Context) (SessionResponse, error) {
	p, err := auth.GetPrincipal(c)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{ID: p.ID, Role: string(p.Role), Scheme: string(auth.GetScheme(c))}, nil
}

func (h *AccountHandler) Session(c echo.Context) error {
	s, err := sessionOf(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AccountHandler) Profile(c echo.Context) error {
	p, err := auth.GetPrincipal(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	a, err := h.accounts.GetByID(ctx, account.KindUser, p.ID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toAccountResponse(a)})
}

func (h *AccountHandler) ListManagers(c echo.Context) error {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	managers, err := h.accounts.ListByKind(ctx, account.KindManager)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	out := make([]AccountResponse, 0, len(managers))
	for _, m := range managers {
		out = append(out, toAccountResponse(m))
	}
	return c.JSON(http.StatusOK, map[string]any{"managers": out})
}

func (h *AccountHandler) CreateManager(c echo.Context) error {
	var req CreateManagerRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	dept, err := rbac.ParseDepartment(req.Department)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidManagerRole)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Name(req.Name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := password.Validate(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	hash, err := password.HashWithCost(req.Password, h.hashCost)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	m, err := h.accounts.Create(ctx, account.CreateAccountInput{
		Kind:         account.KindManager,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         rbac.ManagerRole(dept),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		h.logger.Error("failed to create manager", "error", err)
		return RespondWithMappedError(c, err)
	}

	admin, _ := auth.GetPrincipal(c)
	h.audit.Record(c, audit.Entry{
		Type:      audit.EventManagerCreated,
		Status:    audit.StatusSuccess,
		Principal: admin,
		Email:     m.Email,
		Detail:    string(m.Role),
	})

	return c.JSON(http.StatusCreated, map[string]any{"success": true, "manager": toAccountResponse(m)})
}

func (h *AccountHandler) DepartmentSummary(c echo.Context) error {
	viewer, err := sessionOf(c)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	dept, err := rbac.ParseDepartment(c.Param(paramDepartment))
	if err != nil {
		return respondError(c, http.StatusNotFound, "resource not found")
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	managers, err := h.accounts.ListByKind(ctx, account.KindManager)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	role := rbac.ManagerRole(dept)
	count := 0
	for _, m := range managers {
		if m.Role == role {
			count++
		}
	}

	return c.JSON(http.StatusOK, DepartmentSummaryResponse{
		Department: string(dept),
		Viewer:     viewer,
		Managers:   count,
	})
}
