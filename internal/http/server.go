package http

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"rentledger/internal/cache"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/middleware/ratelimit"
	"rentledger/internal/middleware/security"
	"rentledger/internal/middleware/trace"
	"rentledger/internal/services"
	"rentledger/internal/session"
	appweb "rentledger/web"
)

const cacheSweepInterval = time.Minute

// Deps are the services the server routes to.
type Deps struct {
	Ledger   *services.LedgerService
	Payments *services.PaymentService
	Property *services.PropertyService
	Verifier *session.Verifier

	// Ready reports whether the backend can serve traffic. Nil means always.
	Ready func(ctx context.Context) error

	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	payments  *services.PaymentService
	property  *services.PropertyService
	ready     func(ctx context.Context) error
	logger    *log.Logger

	limiter      *ratelimit.Limiter
	janitor      *cache.Janitor
	shutdownOnce sync.Once
}

// NewServer builds the server and starts its background sweepers.
func NewServer(addr string, deps Deps) (*Server, error) {
	base := deps.Logger
	if base == nil {
		base = log.Default()
	}
	logger := base.WithComponent(log.ComponentHTTP)

	t, err := template.New("").Funcs(template.FuncMap{
		"rupees": core.FormatRupees,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	rlCfg := ratelimit.DefaultConfig()
	if deps.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = deps.RateLimitPerMinute
	}

	s := &Server{
		templates: t,
		ledger:    deps.Ledger,
		payments:  deps.Payments,
		property:  deps.Property,
		ready:     deps.Ready,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(rlCfg),
		janitor:   cache.NewJanitor(deps.Ledger.Caches()...),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	detector := security.NewDetector()
	var handler http.Handler = log.ComponentMiddleware(log.ComponentHTTP)(mux)
	handler = session.Middleware(deps.Verifier)(handler)
	handler = s.limiter.Middleware(detector.ExtractClientIP, ratelimit.WritesOnly)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(detector.ExtractClientIP, logger).Middleware(handler)
	handler = log.Middleware(base)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	s.janitor.Start(cacheSweepInterval)
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/me/dashboard", s.handleMyDashboard)
	mux.HandleFunc("POST /api/me/payments", s.handleSubmitPayment)

	mux.HandleFunc("GET /api/tenants", s.handleListTenants)
	mux.HandleFunc("POST /api/tenants", s.handleOnboardTenant)
	mux.HandleFunc("GET /api/tenants/{id}/dashboard", s.handleTenantDashboard)
	mux.HandleFunc("POST /api/tenants/{id}/cotenants", s.handleAddCoTenant)
	mux.HandleFunc("POST /api/cotenants/{id}/verify", s.handleVerifyCoTenant)

	mux.HandleFunc("POST /api/tenants/{id}/payments", s.handleRecordPayment)
	mux.HandleFunc("PUT /api/payments/{id}", s.handleUpdatePayment)
	mux.HandleFunc("POST /api/payments/{id}/approve", s.handleApprovePayment)
	mux.HandleFunc("GET /payments/{id}/receipt", s.handleReceipt)

	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("POST /api/assets", s.handleCreateAsset)
	mux.HandleFunc("PUT /api/assets/{id}/meter", s.handleUpdateMeter)

	mux.HandleFunc("GET /api/admin/totals", s.handleAdminTotals)
}

// Shutdown stops the background sweepers, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	OK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	OK(w, map[string]string{"status": "ready"})
}
