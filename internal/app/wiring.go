package app

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	apphttp "storefront/internal/http"
	"storefront/internal/metrics"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	"storefront/internal/repository/mongo"
	"storefront/internal/repository/postgres"
	"storefront/pkg/password"

	"github.com/redis/go-redis/v9"
)

const registerLimiterPrefix = "storefront:ratelimit:"

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	svc := &Service{config: cfg, logger: logger}

	accounts, sink, err := svc.openStore(ctx)
	if err != nil {
		svc.close(ctx)
		return nil, err
	}

	limiter, err := svc.openLimiter(ctx)
	if err != nil {
		svc.close(ctx)
		return nil, err
	}

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := EnsureAdmin(ctx, accounts, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, password.DefaultCost)
		if err != nil {
			svc.close(ctx)
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", "email", cfg.Bootstrap.AdminEmail)
		}
	}

	auditLogger := audit.NewLogger(sink, logger)
	svc.onClose(auditLogger.Close)

	svc.server = apphttp.NewServer(&apphttp.ServerDependencies{
		Config:          cfg,
		Logger:          logger,
		Accounts:        accounts,
		Codecs:          auth.NewCodecs(cfg.Auth),
		Rules:           auth.DefaultRules(),
		Metrics:         metrics.New(),
		Audit:           auditLogger,
		RegisterLimiter: limiter,
	})

	return svc, nil
}

// openStore connects the configured credential store and picks the audit
// sink that goes with it.
func (s *Service) openStore(ctx context.Context) (repository.AccountRepository, audit.Sink, error) {
	switch s.config.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := postgres.New(&s.config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.onClose(func(context.Context) error { db.Close(); return nil })
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		s.logger.Info("database connection established", "driver", config.StoreDriverPostgres)
		return postgres.NewAccountRepository(db), postgres.NewAuditRepository(db), nil

	case config.StoreDriverMongo:
		db, err := mongo.New(ctx, &s.config.Mongo)
		if err != nil {
			return nil, nil, err
		}
		s.onClose(db.Close)
		if err := db.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		s.logger.Info("database connection established", "driver", config.StoreDriverMongo)
		return mongo.NewAccountRepository(db), mongo.NewAuditRepository(db), nil

	default:
		s.logger.Warn("using in-memory credential store; accounts are lost on restart")
		return memory.NewAccountRepository(), audit.LogSink{Logger: s.logger}, nil
	}
}

func (s *Service) openLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	reg := s.config.Register
	if reg.Backend != config.RateLimitBackendRedis {
		return ratelimit.NewMemoryLimiter(reg.RateLimit, reg.RateWindow, reg.MaxTracked), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.config.Redis.Addr,
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})
	s.onClose(func(context.Context) error { return client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.logger.Info("redis rate limiter enabled", "addr", s.config.Redis.Addr)
	return ratelimit.NewRedisLimiter(client, reg.RateLimit, reg.RateWindow).WithPrefix(registerLimiterPrefix), nil
}
