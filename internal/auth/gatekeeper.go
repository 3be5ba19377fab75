package auth

import (
	"log/slog"
	"net/http"
	"net/url"

	"storefront/internal/rbac"

	"github.com/labstack/echo/v4"
)

const entryPage = "page"

// DenialHook observes every denied request. It must not write a response.
type DenialHook func(c echo.Context, policy string, decision rbac.Decision, res Resolution)

// Verdict is the gatekeeper's decision for one request.
type Verdict struct {
	Matched  bool
	Rule     RouteRule
	Decision rbac.Decision
	Result   Resolution
}

// Redirect returns the login location for a denied verdict.
func (v Verdict) Redirect() string {
	q := url.Values{}
	q.Set(loginErrorParam, loginErrorValue)
	return v.Rule.LoginPath + "?" + q.Encode()
}

// Gatekeeper guards page navigations against the rule table. It only reads
// cookies and never writes state.
type Gatekeeper struct {
	rules    *RuleTable
	resolver *Resolver
	guard    *rbac.Guard
	logger   *slog.Logger
	recorder Recorder
	onDenied DenialHook
}

func NewGatekeeper(rules *RuleTable, resolver *Resolver, guard *rbac.Guard, logger *slog.Logger, recorder Recorder, onDenied DenialHook) *Gatekeeper {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Gatekeeper{
		rules:    rules,
		resolver: resolver,
		guard:    guard,
		logger:   logger,
		recorder: recorder,
		onDenied: onDenied,
	}
}

// Inspect decides a request without touching the response.
func (g *Gatekeeper) Inspect(req *http.Request) Verdict {
	rule, ok := g.rules.Match(req.URL.Path)
	if !ok {
		return Verdict{Decision: rbac.DecisionAllowed}
	}

	res := g.resolver.Resolve(req, rule.Policy.Accept)
	return Verdict{
		Matched:  true,
		Rule:     rule,
		Decision: res.Decide(g.guard, rule.Policy.Allowed...),
		Result:   res,
	}
}

func (g *Gatekeeper) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := g.Inspect(c.Request())
			if !v.Matched {
				return next(c)
			}

			g.recorder.RecordDecision(entryPage, v.Rule.Policy.Name, v.Decision.String())
			if v.Decision == rbac.DecisionAllowed {
				setPrincipal(c, v.Result)
				return next(c)
			}

			g.logger.Info("page access denied",
				"path", c.Request().URL.Path,
				"policy", v.Rule.Policy.Name,
				"decision", v.Decision.String(),
			)
			if g.onDenied != nil {
				g.onDenied(c, v.Rule.Policy.Name, v.Decision, v.Result)
			}
			return c.Redirect(http.StatusTemporaryRedirect, v.Redirect())
		}
	}
}
