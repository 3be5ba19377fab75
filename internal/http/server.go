package http

import (
	"context"
	"log/slog"
	stdhttp "net/http"
	"strings"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/http/handler"
	"storefront/internal/http/middleware"
	"storefront/internal/metrics"
	"storefront/internal/ratelimit"
	"storefront/internal/rbac"
	"storefront/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"
	registerScope    = "register"
	apiPrefix        = "/api"
)

type ServerDependencies struct {
	Config          *config.Config
	Logger          *slog.Logger
	Accounts        handler.AccountStore
	Codecs          *auth.Codecs
	Rules           *auth.RuleTable
	Metrics         *metrics.Metrics
	Audit           *audit.Logger
	RegisterLimiter ratelimit.Limiter
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := deps.Rules
	if rules == nil {
		rules = auth.DefaultRules()
	}
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	if cfg.Register.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	resolver := auth.NewResolver(deps.Codecs, logger, deps.Metrics)
	guard := rbac.NewGuard()
	gatekeeper := auth.NewGatekeeper(rules, resolver, guard, logger, deps.Metrics, deps.Audit.DenialHook())
	apiGuard := auth.NewMiddleware(rules, resolver, guard, logger, deps.Metrics, deps.Audit.DenialHook())
	sessions := auth.NewCookieIssuer(deps.Codecs, cfg.IsProduction(), cfg.Auth.CookieSameSite)

	// Request ID first so every log line carries it
	e.Use(middleware.RequestID(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.AccessLog())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	e.Use(deps.Metrics.Middleware())

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	loginRateLimiter := middleware.NewLoginRateLimiter()
	// Runs after a guard, so buckets are per principal rather than per address.
	principalRateLimiter := middleware.NewRateLimiter(cfg.Server.PrincipalRPS, cfg.Server.PrincipalBurst)
	throttle := principalRateLimiter.Middleware()
	registerRateLimit := ratelimit.Middleware(deps.RegisterLimiter, ratelimit.ByIP(registerScope), logger)

	handlerCfg := handler.AuthHandlerConfig{StoreTimeout: cfg.Auth.StoreTimeout}
	authHandler := handler.NewAuthHandler(deps.Accounts, sessions, deps.Audit, deps.Metrics, logger, handlerCfg)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Audit, logger, handlerCfg)

	e.GET("/health", healthCheck)
	e.GET("/metrics/auth", deps.Metrics.Handler)

	api := e.Group(apiPrefix)

	api.POST("/admin/auth/login", authHandler.AdminLogin, loginRateLimiter.Middleware())
	api.POST("/admin/auth/logout", authHandler.AdminLogout)
	api.POST("/manager/auth/login", authHandler.ManagerLogin, loginRateLimiter.Middleware())
	api.POST("/manager/auth/logout", authHandler.ManagerLogout)
	api.POST("/auth/login", authHandler.UserLogin, loginRateLimiter.Middleware())
	api.POST("/auth/logout", authHandler.UserLogout)
	api.POST("/auth/register", authHandler.Register, registerRateLimit)

	api.GET("/session", accountHandler.Session, apiGuard.Require(auth.SessionPolicy()), throttle)

	profile := mustPolicy(rules, auth.PolicyProfile).With(auth.Bearer(auth.SchemeUser))
	api.GET("/profile", accountHandler.Profile, apiGuard.Require(profile), throttle)

	adminOnly := apiGuard.Require(mustPolicy(rules, auth.PolicyAdmin).With(auth.Bearer(auth.SchemeAdmin)))
	admin := api.Group("/admin", adminOnly, throttle)
	admin.GET("/managers", accountHandler.ListManagers)
	admin.POST("/managers", accountHandler.CreateManager)

	api.GET("/manager/:department/summary", accountHandler.DepartmentSummary,
		apiGuard.RequireDepartment("department", auth.Bearer(auth.SchemeManager), auth.Bearer(auth.SchemeAdmin)), throttle)

	if cfg.Server.Profiling {
		profiling.Register(e.Group("/debug", adminOnly))
	}

	// Pages are static files; the gatekeeper decides which of them need a session.
	pages := e.Group("", gatekeeper.Middleware())
	pages.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, apiPrefix+"/")
		},
		Root:  cfg.Server.PagesDir,
		HTML5: true,
	}))

	return &Server{
		echo: e,
		deps: deps,
	}
}

// mustPolicy panics when a route references a policy the table does not
// define; this is a wiring error caught at startup.
func mustPolicy(rules *auth.RuleTable, name string) auth.Policy {
	p, ok := rules.Policy(name)
	if !ok {
		panic("auth policy not defined: " + name)
	}
	return p
}

func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
