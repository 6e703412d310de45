package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tobro-digital/agency-platform/internal/announcements"
	"github.com/tobro-digital/agency-platform/internal/changefeed"
	httpmiddleware "github.com/tobro-digital/agency-platform/internal/http/middleware"
	"github.com/tobro-digital/agency-platform/internal/projects"
	"github.com/tobro-digital/agency-platform/internal/queries"
	"github.com/tobro-digital/agency-platform/internal/testimonials"
	"github.com/tobro-digital/agency-platform/internal/visitors"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	QueriesHandler       *queries.Handler
	AnnouncementsHandler *announcements.Handler
	TestimonialsHandler  *testimonials.Handler
	ProjectsHandler      *projects.Handler
	VisitorsHandler      *visitors.Handler
	FeedHub              *changefeed.Hub
	AdminAuthSecret      string
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string

	// Tracking endpoint rate limit, requests/sec per IP with burst.
	TrackingRate  float64
	TrackingBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)

		if cfg.QueriesHandler != nil {
			public.Post("/queries", cfg.QueriesHandler.Create)
		}
		if cfg.AnnouncementsHandler != nil {
			public.Get("/announcement", cfg.AnnouncementsHandler.Get)
		}
		if cfg.TestimonialsHandler != nil {
			public.Get("/testimonials", cfg.TestimonialsHandler.List)
		}
		if cfg.ProjectsHandler != nil {
			public.Get("/projects", cfg.ProjectsHandler.List)
		}
		if cfg.VisitorsHandler != nil {
			public.Route("/track-visitor", func(track chi.Router) {
				if cfg.TrackingRate > 0 {
					track.Use(httpmiddleware.RateLimit(cfg.TrackingRate, cfg.TrackingBurst))
				}
				track.Post("/", cfg.VisitorsHandler.Track)
				track.Get("/", cfg.VisitorsHandler.List)
			})
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes, JWT-protected. Staff sessions are read-only; mutations
	// additionally require the admin role.
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminAuth(cfg.AdminAuthSecret))

			if cfg.QueriesHandler != nil {
				admin.Get("/queries", cfg.QueriesHandler.List)
				admin.Get("/analytics", cfg.QueriesHandler.Analytics)
				admin.Get("/clients", cfg.QueriesHandler.Clients)
				admin.With(httpmiddleware.RequireAdmin).Patch("/queries/{id}/status", cfg.QueriesHandler.UpdateStatus)
				admin.With(httpmiddleware.RequireAdmin).Delete("/queries/{id}", cfg.QueriesHandler.Delete)
			}
			if cfg.AnnouncementsHandler != nil {
				admin.With(httpmiddleware.RequireAdmin).Put("/announcement", cfg.AnnouncementsHandler.Set)
				admin.With(httpmiddleware.RequireAdmin).Delete("/announcement", cfg.AnnouncementsHandler.Clear)
			}
			if cfg.TestimonialsHandler != nil {
				admin.With(httpmiddleware.RequireAdmin).Post("/testimonials", cfg.TestimonialsHandler.Create)
				admin.With(httpmiddleware.RequireAdmin).Delete("/testimonials/{id}", cfg.TestimonialsHandler.Delete)
			}
			if cfg.ProjectsHandler != nil {
				admin.With(httpmiddleware.RequireAdmin).Post("/projects", cfg.ProjectsHandler.Create)
				admin.With(httpmiddleware.RequireAdmin).Delete("/projects/{id}", cfg.ProjectsHandler.Delete)
			}
			if cfg.VisitorsHandler != nil {
				admin.Get("/visitors/summary", cfg.VisitorsHandler.GetSummary)
			}
			if cfg.FeedHub != nil {
				admin.Get("/feed", cfg.FeedHub.HandleFeed)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
