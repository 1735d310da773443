package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/liftline/internal/session"
	"github.com/claude/liftline/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        *storage.DB
	workouts  *session.Manager
	log       *slog.Logger
	importKey string
	ts        WhoIsClient
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, workouts *session.Manager, importKey string, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		workouts:  workouts,
		log:       log,
		importKey: importKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the dev fallback to
// Tailscale WhoIs lookups.
func (s *Server) SetTailscale(ts WhoIsClient) {
	s.ts = ts
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)

		// Plan
		r.Get("/plan", s.handleGetPlan)
		r.Put("/plan", s.handlePutPlan)
		r.Get("/plan/today", s.handleTodayPlan)

		// Live workout
		r.Get("/workout", s.handleWorkoutSnapshot)
		r.Post("/workout/start", s.handleWorkoutStart)
		r.Post("/workout/advance", s.handleWorkoutAdvance)
		r.Post("/workout/skip-rest", s.handleWorkoutSkipRest)
		r.Post("/workout/log-set", s.handleWorkoutLogSet)
		r.Post("/workout/navigate", s.handleWorkoutNavigate)
		r.Post("/workout/end", s.handleWorkoutEnd)
		r.Delete("/workout/sets/{id}", s.handleWorkoutDeleteSet)

		// History and progress
		r.Get("/sets", s.handleQuerySets)
		r.Delete("/sets/{id}", s.handleDeleteSet)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/sessions", s.handleQuerySessions)
		r.Get("/sessions/{id}/sets", s.handleSessionSets)
		r.Get("/stats", s.handleStats)

		// Bulk ingest (legacy import over HTTP, API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.importKey))
			r.Post("/import", s.handleImport)
		})
	})
}

// SetFrontend mounts the embedded SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
