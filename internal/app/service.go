package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/config"
	apphttp "storefront/internal/http"
)

// Service owns the HTTP server and the connections it depends on.
type Service struct {
	config  *config.Config
	logger  *slog.Logger
	server  *apphttp.Server
	closers []func(context.Context) error
}

func (s *Service) onClose(f func(context.Context) error) {
	s.closers = append(s.closers, f)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Service) Start() error {
	addr := ":" + s.config.Server.Port
	s.logger.Info("starting storefront", "addr", addr, "env", s.config.Env, "store", s.config.Store.Driver)
	if err := s.server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server and then releases connections in reverse order.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.close(ctx)
	return err
}

func (s *Service) close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.logger.Error("failed to close dependency", "error", err)
		}
	}
	s.closers = nil
}
