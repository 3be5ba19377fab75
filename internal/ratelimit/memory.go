package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// MemoryLimiter is a fixed-window counter held in process. The number of
// tracked keys is capped; when full, expired windows are swept and, failing
// that, new keys are denied until a live window expires. Live windows are
// never evicted, so a flood of new keys cannot reset another key's count.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	maxKeys int
	now     func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration, maxKeys int) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		maxKeys: maxKeys,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	res := Result{Limit: l.limit}

	w, ok := l.windows[key]
	if !ok {
		if wait, full := l.makeRoom(now); full {
			res.RetryAfter = wait
			return res, nil
		}
	}
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[key] = w
	}

	if w.count >= l.limit {
		res.RetryAfter = w.start.Add(l.period).Sub(now)
		return res, nil
	}

	w.count++
	res.Allowed = true
	res.Remaining = l.limit - w.count
	return res, nil
}

// makeRoom sweeps expired windows when the key cap is reached. It reports
// full, with the time until the earliest live window ends, when none expired.
func (l *MemoryLimiter) makeRoom(now time.Time) (time.Duration, bool) {
	if l.maxKeys <= 0 || len(l.windows) < l.maxKeys {
		return 0, false
	}

	wait := l.period
	for k, w := range l.windows {
		left := w.start.Add(l.period).Sub(now)
		if left <= 0 {
			delete(l.windows, k)
			continue
		}
		if left < wait {
			wait = left
		}
	}
	if len(l.windows) >= l.maxKeys {
		return wait, true
	}
	return 0, false
}

// Tracked reports the number of keys currently held.
func (l *MemoryLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
