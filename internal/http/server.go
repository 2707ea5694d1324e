// Package http exposes the JSON API: account linking, account and
// transaction reads, the reconciled transaction-data endpoint and
// per-user account omission.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"networth/internal/cache"
	"networth/internal/core"
	applog "networth/internal/log"
	"networth/internal/middleware/ratelimit"
	"networth/internal/middleware/security"
	"networth/internal/middleware/trace"
	"networth/internal/services"
)

type Server struct {
	http.Server

	recon     *services.ReconciliationService
	customers *services.CustomerService

	// Reconciled responses are expensive to assemble; repeat requests
	// within the TTL are served from here.
	dataCache *cache.Cache[core.TransactionData]

	limiter      *ratelimit.Limiter
	ipExtractor  *security.IPExtractor
	cancelChores context.CancelFunc
	shutdownOnce sync.Once
}

// Options tunes server-side caching. Zero values use the defaults below.
type Options struct {
	CacheTTL  time.Duration
	CacheSize int
}

const (
	defaultCacheTTL  = 60 * time.Second
	defaultCacheSize = 500
)

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, recon *services.ReconciliationService, customers *services.CustomerService, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}

	choresCtx, cancelChores := context.WithCancel(context.Background())

	s := &Server{
		recon:        recon,
		customers:    customers,
		dataCache:    cache.New[core.TransactionData](opts.CacheSize, opts.CacheTTL),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipExtractor:  security.NewIPExtractor(),
		cancelChores: cancelChores,
	}
	s.dataCache.StartJanitor(choresCtx, 10*time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /accounts", s.handleAuthFlow)
	mux.HandleFunc("GET /accounts/customer/{customerID}", s.handleListAccounts)
	mux.HandleFunc("GET /accounts/email/{email}", s.handleListAccountsByEmail)
	mux.HandleFunc("GET /accounts/{accountID}", s.handleGetAccount)
	mux.HandleFunc("DELETE /accounts/{accountID}", s.handleDisconnectAccount)

	mux.HandleFunc("GET /transactions/{transactionID}", s.handleGetTransaction)
	mux.HandleFunc("POST /transactions/data", s.handleTransactionData)

	mux.HandleFunc("POST /users/omit", s.handleToggleOmit)
	mux.HandleFunc("GET /users/omitted", s.handleListOmitted)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.ipExtractor.ExtractClientIP)
	limited := s.limiter.Middleware(s.ipExtractor.ExtractClientIP, nil)

	handler := tracer.Middleware(headers.Middleware(limited(mux)))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops the cache janitor and rate limiter before shutting down
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cancelChores()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// WithLogger wraps the server's handler with the context logger
// middleware so handlers can pull an enriched logger from the request.
func (s *Server) WithLogger(logger *applog.Logger) {
	s.Server.Handler = applog.Middleware(logger)(s.Server.Handler)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
