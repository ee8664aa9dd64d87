// Package http is the web surface of Celengan: the JSON API, the CSV export
// and the messenger webhooks.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"celengan/internal/amqp"
	"celengan/internal/cache"
	"celengan/internal/chat"
	"celengan/internal/services"
	"celengan/internal/store"
	"celengan/internal/worker"
)

// ReplyPublisher queues outbound chat replies. *amqp.Client satisfies it.
type ReplyPublisher interface {
	PublishReply(ctx context.Context, msg *amqp.ReplyMessage) error
}

type Server struct {
	http.Server

	store      store.Store
	balances   *services.BalanceService
	dashboards *services.DashboardService
	chat       *chat.Handler

	replies       ReplyPublisher // nil when AMQP is not configured
	directReplies *worker.ReplyWorker

	metaVerifyToken string

	rateLimiter *rateLimiter

	// One cached dashboard per user, invalidated on every mutation.
	dashboardCache *cache.Cache[services.Dashboard]

	shutdownOnce sync.Once
}

type Options struct {
	Addr            string
	Store           store.Store
	Balances        *services.BalanceService
	Dashboards      *services.DashboardService
	Chat            *chat.Handler
	Replies         ReplyPublisher
	DirectReplies   *worker.ReplyWorker
	MetaVerifyToken string
	CacheTTL        time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		store:           opts.Store,
		balances:        opts.Balances,
		dashboards:      opts.Dashboards,
		chat:            opts.Chat,
		replies:         opts.Replies,
		directReplies:   opts.DirectReplies,
		metaVerifyToken: opts.MetaVerifyToken,
		rateLimiter:     newRateLimiter(),
		dashboardCache:  cache.New[services.Dashboard](1024, cacheTTL),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/accounts", s.withMiddleware(s.requireUser(s.handleListAccounts)))
	mux.HandleFunc("POST /api/accounts", s.withMiddleware(s.requireUser(s.handleCreateAccount)))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withMiddleware(s.requireUser(s.handleDeleteAccount)))
	mux.HandleFunc("PUT /api/accounts/{id}/balance", s.withMiddleware(s.requireUser(s.handleSetBalance)))
	mux.HandleFunc("PUT /api/accounts/{id}/mode", s.withMiddleware(s.requireUser(s.handleSetMode)))

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.requireUser(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.requireUser(s.handleCreateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.requireUser(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/history", s.withMiddleware(s.requireUser(s.handleListSnapshots)))
	mux.HandleFunc("PUT /api/history/{id}", s.withMiddleware(s.requireUser(s.handleUpdateSnapshot)))
	mux.HandleFunc("DELETE /api/history/{id}", s.withMiddleware(s.requireUser(s.handleDeleteSnapshot)))

	mux.HandleFunc("GET /api/settings", s.withMiddleware(s.requireUser(s.handleGetSettings)))
	mux.HandleFunc("PUT /api/settings", s.withMiddleware(s.requireUser(s.handleUpdateSettings)))

	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.requireUser(s.handleDashboard)))
	mux.HandleFunc("GET /api/export.csv", s.withMiddleware(s.requireUser(s.handleExportCSV)))

	mux.HandleFunc("POST /webhook/telegram", s.withMiddleware(s.handleTelegramWebhook))
	mux.HandleFunc("GET /webhook/whatsapp", s.withMiddleware(s.handleWhatsAppVerify))
	mux.HandleFunc("POST /webhook/whatsapp", s.withMiddleware(s.handleWhatsAppWebhook))

	return s
}

// withMiddleware adds request ids, security headers, rate limiting on
// mutations, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// requireUser resolves the caller from the X-User-ID header. Authentication
// itself lives in front of this service; the header is set by the proxy.
func (s *Server) requireUser(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		next(w, r, userID)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// sendReply queues the reply for the delivery worker, or sends it inline
// when AMQP is not configured.
func (s *Server) sendReply(ctx context.Context, channel chat.Channel, recipient, text string) {
	msg := amqp.NewReplyMessage(string(channel), recipient, text)
	if s.replies != nil {
		if err := s.replies.PublishReply(ctx, msg); err == nil {
			return
		} else {
			slog.ErrorContext(ctx, "Queue reply failed, falling back to direct delivery", "error", err)
		}
	}
	if s.directReplies == nil {
		slog.ErrorContext(ctx, "No reply delivery configured", "channel", channel)
		return
	}
	if err := s.directReplies.HandleReply(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Direct reply delivery failed", "channel", channel, "error", err)
	}
}

// invalidateDashboard drops the user's cached dashboard after any mutation.
func (s *Server) invalidateDashboard(userID string) {
	s.dashboardCache.Delete(userID)
}
