package auth

import (
	"log/slog"
	"net/http"

	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
)

const entryAPI = "api"

// Middleware enforces policies on API routes with the same resolver and
// guard the Gatekeeper uses.
type Middleware struct {
	rules    *RuleTable
	resolver *Resolver
	guard    *rbac.Guard
	logger   *slog.Logger
	recorder Recorder
	onDenied DenialHook
}

func NewMiddleware(rules *RuleTable, resolver *Resolver, guard *rbac.Guard, logger *slog.Logger, recorder Recorder, onDenied DenialHook) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Middleware{
		rules:    rules,
		resolver: resolver,
		guard:    guard,
		logger:   logger,
		recorder: recorder,
		onDenied: onDenied,
	}
}

func (m *Middleware) Rules() *RuleTable { return m.rules }

// Require admits requests whose resolved principal satisfies p.
func (m *Middleware) Require(p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return m.enforce(c, p, next)
		}
	}
}

// RequireDepartment picks the manager policy named by the path parameter and
// extends it with extra sources.
func (m *Middleware) RequireDepartment(param string, extra ...Source) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d, err := rbac.ParseDepartment(c.Param(param))
			if err != nil {
				return respondError(c, http.StatusNotFound, msgUnknownDepartment)
			}
			p, ok := m.rules.Policy(PolicyManager(d))
			if !ok {
				return respondError(c, http.StatusNotFound, msgUnknownDepartment)
			}
			return m.enforce(c, p.With(extra...), next)
		}
	}
}

func (m *Middleware) enforce(c echo.Context, p Policy, next echo.HandlerFunc) error {
	res := m.resolver.Resolve(c.Request(), p.Accept)
	decision := res.Decide(m.guard, p.Allowed...)
	m.recorder.RecordDecision(entryAPI, p.Name, decision.String())

	if decision != rbac.DecisionAllowed {
		m.logger.Info("api access denied",
			"path", c.Request().URL.Path,
			"policy", p.Name,
			"decision", decision.String(),
		)
		if m.onDenied != nil {
			m.onDenied(c, p.Name, decision, res)
		}
		status, msg := decisionStatus(decision)
		return respondError(c, status, msg)
	}

	setPrincipal(c, res)
	return next(c)
}
