package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"conti/internal/auth"
	"conti/internal/ledger"
	"conti/internal/log"
	"conti/internal/middleware/ratelimit"
	"conti/internal/middleware/security"
	"conti/internal/middleware/trace"
	"conti/internal/services"
)

// Deps bundles the services and ports the API serves. Accounts,
// transactions, and budgets are plain CRUD and go straight to their
// ledger ports; everything else goes through a service.
type Deps struct {
	Auth      *services.AuthService
	Tokens    *auth.TokenService
	Dashboard *services.DashboardService
	Bills     *services.BillService
	Rewards   *services.RewardService
	Alerts    *services.AlertCoordinator
	Cards     *services.CardService
	Exports   *services.ExportService

	Accounts     ledger.AccountStore
	Transactions ledger.TransactionStore
	Budgets      ledger.BudgetStore

	// Logger defaults to a text logger on the http component.
	Logger *log.Logger

	// RateLimitPerMinute caps requests per client IP; zero keeps the
	// limiter default of 60.
	RateLimitPerMinute int
}

// Server is the API server. It embeds http.Server so callers tune
// timeouts and call ListenAndServe directly.
type Server struct {
	http.Server

	deps   Deps
	logger *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and the middleware chain, returning a
// ready-to-run server. The chain is trace, then security headers, then
// rate limiting; token auth wraps every /api/v1 route except register
// and login.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.FromEnv(log.ComponentHTTP))
	}

	s := &Server{
		deps:     deps,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("GET /api/v1/auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /api/v1/dashboard", s.requireAuth(s.handleDashboard))

	mux.HandleFunc("GET /api/v1/accounts", s.requireAuth(s.handleListAccounts))
	mux.HandleFunc("POST /api/v1/accounts", s.requireAuth(s.handleCreateAccount))
	mux.HandleFunc("PUT /api/v1/accounts/{id}", s.requireAuth(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", s.requireAuth(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/v1/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/v1/transactions", s.requireAuth(s.handleCreateTransaction))

	mux.HandleFunc("GET /api/v1/budgets", s.requireAuth(s.handleListBudgets))
	mux.HandleFunc("POST /api/v1/budgets", s.requireAuth(s.handleCreateBudget))

	mux.HandleFunc("GET /api/v1/bills", s.requireAuth(s.handleListBills))
	mux.HandleFunc("POST /api/v1/bills", s.requireAuth(s.handleCreateBill))
	mux.HandleFunc("GET /api/v1/bills/due-soon", s.requireAuth(s.handleBillsDueSoon))
	mux.HandleFunc("GET /api/v1/bills/summary", s.requireAuth(s.handleBillsSummary))
	mux.HandleFunc("GET /api/v1/bills/{id}", s.requireAuth(s.handleGetBill))
	mux.HandleFunc("PUT /api/v1/bills/{id}", s.requireAuth(s.handleUpdateBill))
	mux.HandleFunc("DELETE /api/v1/bills/{id}", s.requireAuth(s.handleDeleteBill))
	mux.HandleFunc("POST /api/v1/bills/{id}/pay", s.requireAuth(s.handlePayBill))

	mux.HandleFunc("GET /api/v1/rewards", s.requireAuth(s.handleListRewards))
	mux.HandleFunc("GET /api/v1/rewards/summary", s.requireAuth(s.handleRewardSummary))
	mux.HandleFunc("GET /api/v1/rewards/tiers", s.requireAuth(s.handleRewardTiers))

	mux.HandleFunc("GET /api/v1/alerts", s.requireAuth(s.handleListAlerts))
	mux.HandleFunc("GET /api/v1/alerts/stats", s.requireAuth(s.handleAlertStats))
	mux.HandleFunc("PATCH /api/v1/alerts/{id}", s.requireAuth(s.handleUpdateAlert))
	mux.HandleFunc("DELETE /api/v1/alerts/{id}", s.requireAuth(s.handleDeleteAlert))
	mux.HandleFunc("POST /api/v1/alerts/{id}/select", s.requireAuth(s.handleToggleAlertSelection))
	mux.HandleFunc("POST /api/v1/alerts/bulk", s.requireAuth(s.handleBulkAlerts))
	mux.HandleFunc("POST /api/v1/alerts/mark-all-read", s.requireAuth(s.handleMarkAllAlertsRead))

	mux.HandleFunc("GET /api/v1/cards", s.requireAuth(s.handleListCards))
	mux.HandleFunc("POST /api/v1/cards", s.requireAuth(s.handleCreateCard))
	mux.HandleFunc("POST /api/v1/cards/{id}/freeze", s.requireAuth(s.handleFreezeCard))
	mux.HandleFunc("DELETE /api/v1/cards/{id}", s.requireAuth(s.handleDeleteCard))

	mux.HandleFunc("GET /api/v1/exports/transactions", s.requireAuth(s.handleExportTransactions))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.watchForSuspiciousRequests(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// requireAuth verifies the bearer token and attaches the session to the
// request context. Handlers behind it can assume auth.SessionFrom
// succeeds.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			UnauthorizedError("missing bearer token").Write(w)
			return
		}
		claims, err := s.deps.Tokens.Verify(token)
		if err != nil {
			s.logger.WarnContext(r.Context(), "Rejected bearer token",
				log.FieldPath, r.URL.Path, "error", err)
			UnauthorizedError("invalid or expired token").Write(w)
			return
		}
		session := auth.Session{UserID: claims.UserID, Username: claims.Username}
		next(w, r.WithContext(auth.WithSession(r.Context(), session)))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return "", false
	}
	return h[len(prefix):], true
}

// watchForSuspiciousRequests logs scanner-looking traffic without
// blocking it; the rate limiter is the only middleware that rejects.
func (s *Server) watchForSuspiciousRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason, bad := s.detector.Inspect(r); bad {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				"reason", reason,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops the rate limiter cleanup goroutine and then drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
