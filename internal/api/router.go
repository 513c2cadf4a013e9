package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/ttsbridge/internal/api/handlers"
	"github.com/nikhilbhutani/ttsbridge/internal/api/middleware"
	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/auth"
	"github.com/nikhilbhutani/ttsbridge/internal/delivery"
	"github.com/nikhilbhutani/ttsbridge/internal/tts"
)

// Deps are the components the router wires into the synthesis endpoint.
type Deps struct {
	Engine      tts.Engine
	Files       *artifact.Manager
	Strategy    delivery.Strategy
	Synthesize  handlers.SynthesizeConfig
	Route       string
	APIKey      string
	CORSOrigins []string
	Checks      map[string]handlers.Check
	Logger      *slog.Logger
}

type Router struct {
	mux  *chi.Mux
	deps Deps
}

func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Route == "" {
		deps.Route = "/synthesize"
	}
	return &Router{mux: chi.NewRouter(), deps: deps}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	d := rt.deps

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSOrigins))

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(d.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	guard := auth.NewMiddleware(d.APIKey, d.Logger, d.Strategy)
	synth := handlers.NewSynthesizeHandler(d.Engine, d.Files, d.Strategy, d.Synthesize, d.Logger)

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireConfigured)
		r.Use(guard.Authenticate)
		r.Post(d.Route, synth.Synthesize)
	})

	return r
}
