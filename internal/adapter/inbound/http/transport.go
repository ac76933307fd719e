package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doc-gate/docgate/internal/adapter/outbound/backend"
	"github.com/doc-gate/docgate/internal/adapter/outbound/memory"
	"github.com/doc-gate/docgate/internal/service"
)

// Transport is the inbound adapter that connects the gateway to HTTP clients.
// It assembles the middleware chain, the auth endpoints, the proxy engine and
// the static/SPA router onto a single listener.
type Transport struct {
	authService     *service.AuthService
	auditService    *service.AuditService // optional
	backendClient   *backend.Client
	credStore       *memory.CredentialStore
	server          *http.Server
	addr            string
	protectedPrefix string
	staticDir       string
	spaPage         string
	version         string
	logger          *slog.Logger
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithAddr sets the listen address for the HTTP server.
// Default is "127.0.0.1:9003" (localhost only).
func WithAddr(addr string) Option {
	return func(t *Transport) {
		t.addr = addr
	}
}

// WithLogger sets the logger for the transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithProtectedPrefix sets the path prefix routed to the proxy engine.
// Default is "/v1/".
func WithProtectedPrefix(prefix string) Option {
	return func(t *Transport) {
		t.protectedPrefix = prefix
	}
}

// WithStaticSite configures static file serving and the SPA fallback page.
// Without it, non-protected paths return 404.
func WithStaticSite(dir, spaPage string) Option {
	return func(t *Transport) {
		t.staticDir = dir
		t.spaPage = spaPage
	}
}

// WithAuditService attaches the async audit service.
func WithAuditService(auditSvc *service.AuditService) Option {
	return func(t *Transport) {
		t.auditService = auditSvc
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(version string) Option {
	return func(t *Transport) {
		t.version = version
	}
}

// NewTransport creates an HTTP transport for the given services.
func NewTransport(authService *service.AuthService, backendClient *backend.Client, credStore *memory.CredentialStore, opts ...Option) *Transport {
	t := &Transport{
		authService:     authService,
		backendClient:   backendClient,
		credStore:       credStore,
		addr:            "127.0.0.1:9003",
		protectedPrefix: "/v1/",
		spaPage:         "index.html",
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handler builds the full handler chain. Exposed for tests; Start wires it
// onto the listener.
func (t *Transport) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(reg)
	if t.credStore != nil {
		RegisterActiveSessions(reg, t.credStore.Size)
	}
	if t.auditService != nil {
		RegisterAuditDrops(reg, t.auditService.Drops)
	}

	authHandler := NewAuthHandler(t.authService, metrics)
	proxyEngine := NewProxyEngine(t.backendClient, t.credStore, metrics, t.auditService)
	router := NewRouter(t.protectedPrefix, t.staticDir, t.spaPage, proxyEngine)
	healthChecker := NewHealthChecker(t.credStore, t.auditService, t.version)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.HandleFunc("/auth/logout", authHandler.Logout)
	mux.HandleFunc("/auth/status", authHandler.Status)
	mux.Handle("/health", healthChecker.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	// Catch-all: proxy for the protected prefix, static/SPA for the rest.
	mux.Handle("/", router)

	// Middleware chain (outermost first):
	// 1. MetricsMiddleware - capture full request duration
	// 2. RequestID - extract/generate request ID and enrich logger
	// 3. RealIP - extract client IP from X-Forwarded-For
	// 4. Session - read or issue the session cookie
	var handler http.Handler = mux
	handler = SessionMiddleware(handler)
	handler = RealIPMiddleware(handler)
	handler = RequestIDMiddleware(t.logger)(handler)
	handler = MetricsMiddleware(metrics)(handler)
	return handler
}

// Start begins accepting HTTP connections. It blocks until the context is
// cancelled or the server fails.
func (t *Transport) Start(ctx context.Context) error {
	t.server = &http.Server{
		Addr:    t.addr,
		Handler: t.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		t.logger.Info("starting HTTP server", "addr", t.addr)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (t *Transport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}

	t.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	return t.shutdown()
}
