package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/gymchat/internal/coach"
	"github.com/claude/gymchat/internal/interpret"
	"github.com/claude/gymchat/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Interpreter is the interpretation surface the handlers call.
type Interpreter interface {
	Interpret(ctx context.Context, userID, text string) interpret.Reply
	Records(ctx context.Context, userID string, period models.Period) ([]models.Record, error)
	Summary(ctx context.Context, userID string, period models.Period) (models.PeriodSummary, error)
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, format string) (string, error)
}

// UserStore registers identified callers.
type UserStore interface {
	EnsureUser(ctx context.Context, login, displayName string) error
	GetUser(ctx context.Context, login string) (*models.User, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	interp    Interpreter
	coach     *coach.Service
	users     UserStore
	speech    Transcriber
	tailscale WhoIsClient
	mcp       http.Handler
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(interp Interpreter, coachSvc *coach.Service, users UserStore, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		interp: interp,
		coach:  coachSvc,
		users:  users,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution to Tailscale WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.tailscale = lc
}

// SetSpeech enables the transcription endpoint.
func (s *Server) SetSpeech(t Transcriber) {
	s.speech = t
}

// SetMCP mounts an MCP transport at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Scraped from inside the tailnet or the host; no identity needed.
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.identify)
		r.Use(s.registerUser)

		r.Get("/api/v1/me", s.handleMe)
		r.Post("/api/v1/interpret", s.handleInterpret)
		r.Post("/api/v1/transcribe", s.handleTranscribe)
		r.Get("/api/v1/records", s.handleRecords)
		r.Get("/api/v1/summary", s.handleSummary)

		r.Put("/api/v1/coach/mode", s.handleCoachMode)
		r.Get("/api/v1/coach/students", s.handleListStudents)
		r.Post("/api/v1/coach/students", s.handleAuthorizeStudent)

		r.Handle("/mcp", http.HandlerFunc(s.handleMCP))
	})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		http.NotFound(w, r)
		return
	}
	s.mcp.ServeHTTP(w, r)
}

// handleHealth reports 503 when the user store cannot reach its database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.users.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.log.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
