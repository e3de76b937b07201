// Package ratelimit caps request volume per client over fixed
// one-minute windows.
package ratelimit

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter tracks one counting window per client key. Windows are
// anchored at the first request seen, so a steady trickle under the
// cap is never rejected.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	perMinute  int
	staleAfter time.Duration
	now        func() time.Time

	denied atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	seen  int
}

// Config holds limiter configuration.
type Config struct {
	RequestsPerMinute int
	// SweepInterval controls how often idle client windows are evicted.
	SweepInterval time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		SweepInterval:     5 * time.Minute,
	}
}

// NewLimiter starts a limiter and its background sweep. Call Stop when
// done with it.
func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &Limiter{
		windows:    make(map[string]*window),
		perMinute:  cfg.RequestsPerMinute,
		staleAfter: 2 * cfg.SweepInterval,
		now:        cfg.Now,
		stop:       make(chan struct{}),
	}
	go l.sweepLoop(cfg.SweepInterval)
	return l
}

// Allow reports whether one more request from client fits its current
// window. Denials are counted for the readiness report.
func (l *Limiter) Allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	w, ok := l.windows[client]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.windows[client] = &window{start: now, seen: 1}
		l.mu.Unlock()
		return true
	}
	w.seen++
	seen := w.seen
	l.mu.Unlock()

	if seen > l.perMinute {
		l.denied.Add(1)
		return false
	}
	return true
}

func (l *Limiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweepStale()
		case <-l.stop:
			return
		}
	}
}

// sweepStale drops windows whose last activity predates the stale
// cutoff and returns how many were removed.
func (l *Limiter) sweepStale() int {
	cutoff := l.now().Add(-l.staleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for client, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, client)
			removed++
		}
	}
	return removed
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Metrics is a point-in-time view of limiter activity.
type Metrics struct {
	Denied         int64
	TrackedClients int
}

// Snapshot returns current limiter metrics.
func (l *Limiter) Snapshot() Metrics {
	l.mu.Lock()
	tracked := len(l.windows)
	l.mu.Unlock()

	return Metrics{
		Denied:         l.denied.Load(),
		TrackedClients: tracked,
	}
}

// Middleware rejects over-cap requests through onLimit, or with a plain
// 429 when onLimit is nil. extractIP picks the client key.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
