// Package trace stamps every request with an ID and logs the request
// lifecycle around the rest of the handler chain.
package trace

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"conti/internal/log"
)

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b[:])
}

// Middleware logs request start and completion under a shared request
// ID and keeps running totals for the readiness report. The ID rides
// the request context, so handler log calls carry it too.
type Middleware struct {
	extractIP  func(*http.Request) string
	structured *log.StructuredLogger

	requests      atomic.Int64
	elapsedMicros atomic.Int64
}

// NewMiddleware builds the tracer. extractIP resolves the client
// address for the logs; a nil logger falls back to env configuration.
func NewMiddleware(extractIP func(*http.Request) string, logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.New(log.FromEnv(log.ComponentHTTP))
	}
	return &Middleware{
		extractIP:  extractIP,
		structured: log.NewStructuredLogger(logger),
	}
}

// Middleware wraps next with ID stamping and lifecycle logging.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := log.WithRequestID(r.Context(), newRequestID())
		r = r.WithContext(ctx)

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		m.structured.LogHTTPStart(ctx, r, clientIP)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		m.requests.Add(1)
		m.elapsedMicros.Add(elapsed.Microseconds())

		m.structured.LogHTTPEnd(ctx, r, rec.status, elapsed.Milliseconds(), clientIP)
	})
}

// statusRecorder captures the status code the handler chain wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Metrics is a point-in-time view of request volume.
type Metrics struct {
	Requests  int64
	AvgMicros int64
}

// Snapshot returns request totals since startup.
func (m *Middleware) Snapshot() Metrics {
	n := m.requests.Load()
	var avg int64
	if n > 0 {
		avg = m.elapsedMicros.Load() / n
	}
	return Metrics{Requests: n, AvgMicros: avg}
}
