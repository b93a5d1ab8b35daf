// Package http exposes the bill tracker's JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"billy/internal/cache"
	"billy/internal/log"
	"billy/internal/middleware/ratelimit"
	"billy/internal/middleware/security"
	"billy/internal/schedule"
	"billy/internal/services"
)

const (
	requestTimeout = 30 * time.Second

	cacheCleanupInterval = 10 * time.Minute
)

type Server struct {
	http.Server
	bills  *services.BillService
	logger *log.Logger

	// Period views are pure functions of the bill set, so both caches are
	// flushed wholesale on any bill mutation.
	periodsCache *cache.LRUCache[[]schedule.PayPeriod]
	activeCache  *cache.LRUCache[schedule.ActiveView]
	cacheManager *cache.Manager

	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

func NewServer(addr string, bills *services.BillService, logger *log.Logger, cacheSize int, cacheTTL time.Duration) *Server {
	s := &Server{
		bills:        bills,
		logger:       logger.WithComponent(log.ComponentHTTP),
		periodsCache: cache.NewLRUCache[[]schedule.PayPeriod](cacheSize, cacheTTL),
		activeCache:  cache.NewLRUCache[schedule.ActiveView](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}
	s.cacheManager.Register(s.periodsCache)
	s.cacheManager.Register(s.activeCache)
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(req *http.Request) string {
		return middleware.GetReqID(req.Context())
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", s.handleListBills)
			r.Post("/", s.handleCreateBills)
			r.Put("/{id}", s.handleUpdateBill)
			r.Delete("/{id}", s.handleDeleteBill)
			r.Post("/{id}/payments/toggle", s.handleTogglePayment)
		})
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", s.handlePayPeriods)
			r.Get("/active", s.handleActivePeriod)
		})
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handlePutSettings)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.bills.GetSettings(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// invalidateViews drops all cached period views after a bill mutation.
func (s *Server) invalidateViews() {
	s.periodsCache.Clear()
	s.activeCache.Clear()
}

// Shutdown stops the cache sweep, then the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
