package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics counts requests and authentication outcomes. It is safe for
// concurrent use and implements auth.Recorder.
type Metrics struct {
	totalRequests  int64
	activeRequests int64
	totalErrors    int64
	totalLatencyMs int64
	startTime      time.Time

	mu          sync.Mutex
	statusCodes map[int]int64
	attempts    map[string]int64
	decisions   map[string]int64
	logins      map[string]int64
}

func New() *Metrics {
	return &Metrics{
		startTime:   time.Now(),
		statusCodes: make(map[int]int64),
		attempts:    make(map[string]int64),
		decisions:   make(map[string]int64),
		logins:      make(map[string]int64),
	}
}

func (m *Metrics) RecordAttempt(scheme, outcome string) {
	m.inc(m.attempts, scheme+"."+outcome)
}

func (m *Metrics) RecordDecision(entry, policy, decision string) {
	m.inc(m.decisions, entry+"."+policy+"."+decision)
}

// RecordLogin counts a login by scheme and result.
func (m *Metrics) RecordLogin(scheme string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.inc(m.logins, scheme+"."+result)
}

func (m *Metrics) inc(counter map[string]int64, key string) {
	m.mu.Lock()
	counter[key]++
	m.mu.Unlock()
}

// Middleware tracks request count, latency and error rates.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.activeRequests, 1)
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			atomic.AddInt64(&m.activeRequests, -1)
			atomic.AddInt64(&m.totalRequests, 1)
			atomic.AddInt64(&m.totalLatencyMs, time.Since(start).Milliseconds())

			status := c.Response().Status
			if status >= http.StatusBadRequest {
				atomic.AddInt64(&m.totalErrors, 1)
			}
			m.mu.Lock()
			m.statusCodes[status]++
			m.mu.Unlock()

			return nil
		}
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Attempts       map[string]int64 `json:"identity_attempts"`
	Decisions      map[string]int64 `json:"authorization_decisions"`
	Logins         map[string]int64 `json:"logins"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.totalRequests)
	var avg float64
	if total > 0 {
		avg = float64(atomic.LoadInt64(&m.totalLatencyMs)) / float64(total)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	codes := make(map[string]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		codes[fmt.Sprintf("%d", k)] = v
	}

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.activeRequests),
		TotalErrors:    atomic.LoadInt64(&m.totalErrors),
		AvgLatencyMs:   avg,
		UptimeSeconds:  time.Since(m.startTime).Seconds(),
		StatusCodes:    codes,
		Attempts:       copyCounts(m.attempts),
		Decisions:      copyCounts(m.decisions),
		Logins:         copyCounts(m.logins),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Handler serves the snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
