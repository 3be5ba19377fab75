package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/auth"
	"storefront/internal/rbac"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// EventType names an authentication event.
type EventType string

const (
	EventLogin          EventType = "login"
	EventLogout         EventType = "logout"
	EventRegister       EventType = "register"
	EventAccessDenied   EventType = "access_denied"
	EventManagerCreated EventType = "manager_created"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

const (
	writeTimeout = 2 * time.Second
	queueSize    = 1024
)

// Sink persists events.
type Sink interface {
	Insert(ctx context.Context, event repository.AuditEvent) error
}

// LogSink writes events to a structured logger instead of a database.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Insert(_ context.Context, e repository.AuditEvent) error {
	s.Logger.Info("audit",
		"event", e.Type,
		"actor", e.Actor,
		"role", e.Role,
		"email", e.Email,
		"path", e.Path,
		"ip", e.IP,
		"outcome", e.Outcome,
		"detail", e.Detail,
	)
	return nil
}

// Logger records authentication events without blocking the request. Events
// are queued to a single writer; when the queue is full they are dropped.
type Logger struct {
	sink   Sink
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	events chan repository.AuditEvent
	done   chan struct{}
}

func NewLogger(sink Sink, logger *slog.Logger) *Logger {
	return newLogger(sink, logger, queueSize)
}

func newLogger(sink Sink, logger *slog.Logger, size int) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{
		sink:   sink,
		logger: logger,
		events: make(chan repository.AuditEvent, size),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	defer close(l.done)
	for event := range l.events {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := l.sink.Insert(ctx, event); err != nil {
			l.logger.Error("audit log failed", "event", event.Type, "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.events)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit queue not drained: %w", ctx.Err())
	}
}

func (l *Logger) enqueue(event repository.AuditEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.Warn("audit event after close", "event", event.Type)
		return
	}
	select {
	case l.events <- event:
	default:
		l.logger.Warn("audit queue full, event dropped", "event", event.Type)
	}
}

// Entry is the per-request detail of an event.
type Entry struct {
	Type      EventType
	Status    Status
	Principal *rbac.Principal
	Email     string
	Detail    string
}

// Record writes e with request metadata taken from c.
func (l *Logger) Record(c echo.Context, e Entry) {
	event := repository.AuditEvent{
		Type:      string(e.Type),
		Email:     e.Email,
		Path:      c.Request().URL.Path,
		IP:        c.RealIP(),
		Outcome:   string(e.Status),
		Detail:    e.Detail,
		CreatedAt: time.Now().UTC(),
	}
	if e.Principal != nil {
		event.Actor = e.Principal.ID
		event.Role = string(e.Principal.Role)
	}

	l.enqueue(event)
}

// DenialHook adapts the logger to the guards' denial callback.
func (l *Logger) DenialHook() auth.DenialHook {
	return func(c echo.Context, policy string, decision rbac.Decision, res auth.Resolution) {
		detail := policy + ": " + decision.String()
		for _, a := range res.Attempts {
			if a.Outcome == auth.OutcomeRoleMismatch {
				detail += " (role mismatch on " + a.Carrier + ")"
				break
			}
		}
		l.Record(c, Entry{
			Type:      EventAccessDenied,
			Status:    StatusDenied,
			Principal: res.Principal,
			Detail:    detail,
		})
	}
}
