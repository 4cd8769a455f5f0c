// Package api is the HTTP adapter over the relay's in-memory state: session
// membership, presence, command queues, execution results and session files.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pubtunnel/relayd/internal/config"
	"github.com/pubtunnel/relayd/internal/filestore"
	"github.com/pubtunnel/relayd/internal/health"
	"github.com/pubtunnel/relayd/internal/log"
	"github.com/pubtunnel/relayd/internal/offline"
	"github.com/pubtunnel/relayd/internal/presence"
	"github.com/pubtunnel/relayd/internal/queue"
	"github.com/pubtunnel/relayd/internal/result"
	"github.com/pubtunnel/relayd/internal/session"
)

// Deps bundles the state owners the server routes requests to.
type Deps struct {
	Sessions *session.Registry
	Presence *presence.Tracker
	Offline  *offline.Coordinator
	Queues   *queue.Manager
	Results  *result.Store
	Files    *filestore.Store
	Health   *health.Manager
}

// Server holds handler dependencies. It is safe for concurrent use; all state
// lives in the injected components.
type Server struct {
	cfg    config.AppConfig
	deps   Deps
	logger zerolog.Logger
	clock  func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer wires handler dependencies.
func NewServer(cfg config.AppConfig, deps Deps, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: log.WithComponent("api"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the full router with the canonical middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestID)
	r.Use(requestMetrics)
	r.Use(requestLogger)
	if s.cfg.RateLimitEnabled {
		r.Use(rateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))
	}

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/sessions/default/poll", s.handleDefaultPoll)

		r.With(s.requireAdmin).Get("/sessions", s.handleAdminSessionList)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/poll", s.handleSessionPoll)

			r.Get("/clients/{clientID}/commands/poll", s.handleFIFOPoll)
			r.Get("/clients/{clientID}/command", s.handleSingleCommand)
			r.Post("/clients/{clientID}/presence", s.handlePresenceUpdate)
			r.Get("/clients/{clientID}/presence", s.handlePresenceQuery)
			r.Post("/clients/force-offline-check", s.handleForceOfflineCheck)
			r.Get("/clients/offline-status", s.handleOfflineStatus)

			r.Post("/commands/submit", s.handleSubmitCommand)
			r.Post("/commands/submit-auto-async", s.handleAutoAsyncSubmit)
			r.Get("/commands/history", s.handleCommandHistory)
			r.Get("/commands/{commandID}/status", s.handleCommandStatus)
			r.Post("/commands/{commandID}/error", s.handleErrorReport)
			r.Get("/commands/{commandID}/error", s.handleErrorQuery)
			r.Post("/commands/{commandID}/files", s.handleResultFileUpload)

			r.Get("/results/{commandID}", s.handleResultQuery)
			r.Post("/results", s.handleResultSubmission)

			r.Post("/files", s.handleFileUpload)
			r.Get("/files", s.handleFileList)
			r.Get("/files/{fileID}", s.handleFileDownload)
			r.Post("/files/{fileID}/validate-access", s.handleFileAccessValidation)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/clients/force-offline-check", s.handleAdminForceOfflineCheck)
		})

		r.Route("/configuration/offline-threshold", func(r chi.Router) {
			r.Get("/", s.handleThresholdGet)
			r.Put("/", s.handleThresholdUpdate)
		})
	})

	var handler http.Handler = r
	if s.cfg.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "relayd.api")
	}
	return handler
}

func commandToPayload(cmd queue.Command) commandPayload {
	return commandPayload{
		CommandID:    cmd.ID,
		Content:      cmd.Content,
		TargetClient: cmd.TargetClient,
		SessionID:    cmd.SessionID,
		CreatedAt:    cmd.CreatedAt,
	}
}
