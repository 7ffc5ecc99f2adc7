package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"statuscheck-go/api/websocket"
	"statuscheck-go/config"
	"statuscheck-go/db"
	"statuscheck-go/metrics"
	"statuscheck-go/status"
)

// WebSocket upgrader
var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled at middleware level
	},
}

// Checker runs a full status check flow.
type Checker interface {
	Run(ctx context.Context, details status.ApplicantDetails) *status.FlowResult
}

// Prober reports the availability of the site's pages.
type Prober interface {
	Probe(ctx context.Context, target string) status.ProbeResult
	ProbeAll(ctx context.Context, targets map[string]string) map[string]status.ProbeResult
}

// CheckStore lists audited checks.
type CheckStore interface {
	ListRecentChecks(ctx context.Context, limit int) ([]db.CheckRecord, error)
}

// Server is the REST API server with WebSocket support.
type Server struct {
	cfg     *config.Config
	checker Checker
	prober  Prober
	store   CheckStore
	hub     *websocket.Hub
	metrics *metrics.Metrics
	limiter *ipLimiter
	log     *zap.SugaredLogger
	srv     *http.Server
}

// NewServer creates the API server. store, hub and m may be nil; the routes
// that depend on them then answer 503.
func NewServer(cfg *config.Config, checker Checker, prober Prober, store CheckStore, hub *websocket.Hub, m *metrics.Metrics, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		cfg:     cfg,
		checker: checker,
		prober:  prober,
		store:   store,
		hub:     hub,
		metrics: m,
		limiter: newIPLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		log:     log,
	}

	mux := http.NewServeMux()
	auth := s.authMiddleware

	// Health check (unauthenticated)
	s.route(mux, "GET /api/v1/health", s.handleHealth)

	// WebSocket endpoint (token via query param)
	s.route(mux, "GET /api/v1/ws", s.handleWebSocket)

	// Status check flow
	s.route(mux, "POST /api/v1/status/check", auth(s.rateLimitMiddleware(s.handleStatusCheck)))

	// Page probes
	s.route(mux, "GET /api/v1/status", auth(s.handleProbeAll))
	s.route(mux, "GET /api/v1/status/{execution}", auth(s.handleProbe))

	// Audit log
	s.route(mux, "GET /api/v1/checks", auth(s.handleListChecks))

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	s.route(mux, "/", s.handleNotFound)

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.corsMiddleware(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// handleWebSocket upgrades the HTTP connection to a WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		jsonError(w, "event stream not available", http.StatusServiceUnavailable)
		return
	}
	if want := s.cfg.Server.APIToken; want != "" {
		token := r.URL.Query().Get("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(want)) != 1 {
			jsonError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.hub, conn)
	go client.WritePump()
	go client.ReadPump()
}

// Start runs the API server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.log.Infow("API server starting", "addr", s.srv.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnw("API server shutdown", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"ok":     false,
		"error":  "Not Found",
		"path":   r.URL.RequestURI(),
		"method": r.Method,
	})
}
