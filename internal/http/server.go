// Package http exposes the JSON API: account, category and transaction
// resources scoped to the authenticated user, plus the audit trail viewer
// and operational endpoints.
package http

import (
	"context"
	"net/http"
	"sync"

	"fintrack/internal/audit"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/storage"
)

// Store is the persistence surface the handlers depend on.
type Store interface {
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	GetAccount(ctx context.Context, userID, id string) (*core.Account, error)
	CreateAccount(ctx context.Context, userID, name string) (*core.Account, error)
	UpdateAccount(ctx context.Context, userID, id, name string) (*core.Account, error)
	DeleteAccount(ctx context.Context, userID, id string) (string, error)
	BulkDeleteAccounts(ctx context.Context, userID string, ids []string) ([]string, error)

	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, id string) (*core.Category, error)
	CreateCategory(ctx context.Context, userID, name string) (*core.Category, error)
	UpdateCategory(ctx context.Context, userID, id, name string) (*core.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) (string, error)
	BulkDeleteCategories(ctx context.Context, userID string, ids []string) ([]string, error)

	ListTransactions(ctx context.Context, userID string, filter storage.TransactionFilter) ([]core.TransactionDetail, error)
	GetTransaction(ctx context.Context, userID, id string) (*core.Transaction, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (*core.Transaction, error)
	BulkCreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
	BulkDeleteTransactions(ctx context.Context, userID string, ids []string) ([]string, error)
	DeleteTransaction(ctx context.Context, userID, id string) (string, error)
	UpdateTransaction(ctx context.Context, userID, id string, params storage.UpdateTransactionParams) (*core.Transaction, error)

	ListAuditLogs(ctx context.Context) ([]core.AuditLog, error)
	Ping() error
}

type Server struct {
	http.Server
	store    Store
	recorder *audit.Recorder

	tracer       *trace.Middleware
	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. The auth provider resolves the acting user; handlers reject
// requests it cannot resolve.
func NewServer(addr string, store Store, recorder *audit.Recorder, provider auth.Provider, requestsPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:    store,
		recorder: recorder,
		tracer:   trace.NewMiddleware(clientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: requestsPerMinute,
		}),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("POST /accounts/bulk-delete", s.handleBulkDeleteAccounts)
	mux.HandleFunc("GET /accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PATCH /accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("POST /categories/bulk-delete", s.handleBulkDeleteCategories)
	mux.HandleFunc("GET /categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PATCH /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/bulk-create", s.handleBulkCreateTransactions)
	mux.HandleFunc("POST /transactions/bulk-delete", s.handleBulkDeleteTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /audit-logs", s.handleListAuditLogs)

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	requestID := func(r *http.Request) string { return trace.GetRequestID(r.Context()) }
	s.Handler = s.tracer.Middleware(
		applog.Middleware(logger)(
			applog.RequestIDMiddleware(requestID)(
				securityHeaders(
					s.withRateLimit(
						auth.Middleware(provider)(mux))))))

	return s
}

// Shutdown gracefully shuts down the server and the limiter's cleanup
// goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP extracts the client address, considering proxies.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// withRateLimit throttles mutating requests per client; reads pass through.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, "Too many requests")
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	respondJSON(w, http.StatusOK, map[string]int64{
		"total_requests":            m.TotalRequests,
		"average_response_time_us":  m.AverageResponseTime,
		"active_rate_limit_clients": int64(s.rateLimiter.ActiveClients()),
	})
}
