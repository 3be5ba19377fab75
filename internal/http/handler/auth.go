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

var errBadCredentials = errors.New("bad credentials")

type AuthHandlerConfig struct {
	StoreTimeout time.Duration
	HashCost     int
}

type AuthHandler struct {
	accounts     AccountStore
	sessions     SessionIssuer
	audit        AuditRecorder
	logins       LoginCounter
	logger       *slog.Logger
	storeTimeout time.Duration
	hashCost     int
	now          func() time.Time
}

func NewAuthHandler(accounts AccountStore, sessions SessionIssuer, auditor AuditRecorder, logins LoginCounter, logger *slog.Logger, cfg AuthHandlerConfig) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = password.DefaultCost
	}
	return &AuthHandler{
		accounts:     accounts,
		sessions:     sessions,
		audit:        auditor,
		logins:       logins,
		logger:       logger,
		storeTimeout: cfg.StoreTimeout,
		hashCost:     cfg.HashCost,
		now:          time.Now,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ManagerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResponse carries no token; the session travels only in the HttpOnly cookie.
type LoginResponse struct {
	Success bool             `json:"success"`
	Role    string           `json:"role"`
	User    *AccountResponse `json:"user,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ManagerLogoutRequest struct {
	Role string `json:"role"`
}

func (h *AuthHandler) storeContext(c echo.Context) (context.Context, context.CancelFunc) {
	if h.storeTimeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.storeTimeout)
}

// authenticate checks email and password against the accounts of one kind.
// Any mismatch yields errBadCredentials; store failures are returned as is.
func (h *AuthHandler) authenticate(c echo.Context, kind account.Kind, email, pw string) (*account.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pw == "" {
		password.BurnVerify(pw)
		return nil, errBadCredentials
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	a, err := h.accounts.GetByEmail(ctx, kind, email)
	if err != nil {
		password.BurnVerify(pw)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if !password.Verify(pw, a.PasswordHash) {
		if err := h.accounts.RecordFailedLogin(ctx, kind, a.ID); err != nil {
			h.logger.Error("failed to record failed login", "kind", kind, "account_id", a.ID, "error", err)
		}
		return nil, errBadCredentials
	}

	return a, nil
}

func (h *AuthHandler) completeLogin(c echo.Context, scheme auth.Scheme, a *account.Account) error {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.accounts.RecordSuccessfulLogin(ctx, a.Kind, a.ID, h.now().UTC()); err != nil {
		h.logger.Error("failed to record successful login", "kind", a.Kind, "account_id", a.ID, "error", err)
	}

	if _, err := h.sessions.Issue(c, a.Principal()); err != nil {
		return err
	}

	p := a.Principal()
	h.logins.RecordLogin(string(scheme), true)
	h.audit.Record(c, audit.Entry{Type: audit.EventLogin, Status: audit.StatusSuccess, Principal: &p, Email: a.Email})
	h.logger.Info("login succeeded", "scheme", scheme, "account_id", a.ID, "role", a.Role)
	return nil
}

func (h *AuthHandler) loginFailed(c echo.Context, scheme auth.Scheme, email string, err error, message string) error {
	h.logins.RecordLogin(string(scheme), false)

	if !errors.Is(err, errBadCredentials) {
		h.logger.Error("login lookup failed", "scheme", scheme, "error", err)
		return RespondWithMappedError(c, err)
	}

	h.audit.Record(c, audit.Entry{Type: audit.EventLogin, Status: audit.StatusFailure, Email: email})
	h.logger.Info("login failed", "scheme", scheme)
	return respondError(c, http.StatusUnauthorized, message)
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	a, err := h.authenticate(c, account.KindAdmin, req.Email, req.Password)
	if err != nil {
		return h.loginFailed(c, auth.SchemeAdmin, req.Email, err, msgInvalidCredentials)
	}

	if err := h.completeLogin(c, auth.SchemeAdmin, a); err != nil {
		return respondError(c, http.StatusInternalServerError, msgIssueTokenFail)
	}

	return c.JSON(http.StatusOK, LoginResponse{Success: true, Role: string(a.Role)})
}

func (h *AuthHandler) ManagerLogin(c echo.Context) error {
	var req ManagerLoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	role, roleErr := rbac.ParseManagerRole(req.Role)

	a, err := h.authenticate(c, account.KindManager, req.Email, req.Password)
	if err != nil {
		return h.loginFailed(c, auth.SchemeManager, req.Email, err, msgInvalidCredentialsRole)
	}
	if roleErr != nil || a.Role != role {
		return h.loginFailed(c, auth.SchemeManager, req.Email, errBadCredentials, msgInvalidCredentialsRole)
	}

	if err := h.completeLogin(c, auth.SchemeManager, a); err != nil {
		return respondError(c, http.StatusInternalServerError, msgIssueTokenFail)
	}

	return c.JSON(http.StatusOK, LoginResponse{Success: true, Role: string(a.Role)})
}

func (h *AuthHandler) UserLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	a, err := h.authenticate(c, account.KindUser, req.Email, req.Password)
	if err != nil {
		return h.loginFailed(c, auth.SchemeUser, req.Email, err, msgInvalidCredentials)
	}

	if err := h.completeLogin(c, auth.SchemeUser, a); err != nil {
		return respondError(c, http.StatusInternalServerError, msgIssueTokenFail)
	}

	user := toAccountResponse(a)
	return c.JSON(http.StatusOK, LoginResponse{Success: true, Role: string(a.Role), User: &user})
}

func (h *AuthHandler) AdminLogout(c echo.Context) error {
	return h.logout(c, auth.CookieAdmin)
}

func (h *AuthHandler) UserLogout(c echo.Context) error {
	return h.logout(c, auth.CookieUser)
}

// ManagerLogout clears the cookie of the department named by role, which may
// be "manager:<dept>" or a bare department.
func (h *AuthHandler) ManagerLogout(c echo.Context) error {
	var req ManagerLogoutRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	role, err := rbac.ParseManagerRole(req.Role)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidManagerRole)
	}
	name, _ := auth.CookieNameFor(role)
	return h.logout(c, name)
}

func (h *AuthHandler) logout(c echo.Context, cookie string) error {
	h.sessions.Clear(c, cookie)
	h.audit.Record(c, audit.Entry{Type: audit.EventLogout, Status: audit.StatusSuccess, Detail: cookie})
	return respondMessage(c, http.StatusOK, msgLoggedOut)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
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

	a, err := h.accounts.Create(ctx, account.CreateAccountInput{
		Kind:         account.KindUser,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         rbac.RoleUser,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			h.audit.Record(c, audit.Entry{Type: audit.EventRegister, Status: audit.StatusFailure, Email: req.Email, Detail: "email exists"})
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		h.logger.Error("failed to create account", "error", err)
		return RespondWithMappedError(c, err)
	}

	p := a.Principal()
	h.audit.Record(c, audit.Entry{Type: audit.EventRegister, Status: audit.StatusSuccess, Principal: &p, Email: a.Email})

	user := toAccountResponse(a)
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "user": user})
}
