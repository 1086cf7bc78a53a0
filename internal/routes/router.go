package routes

import (
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/api"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes builds the HTTP surface over already initialized
// dependencies.
func RegisterRoutes(deps *api.Dependencies) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware; metrics reads the identity so it runs after auth
	r.Use(middleware.RequestIDMiddleware)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true, // session cookie
		MaxAge:           300,
	}))
	r.Use(middleware.AuthMiddleware(deps.Verifier))
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	handlers := api.NewHandlers(deps)

	// health check
	r.Get("/healthCheck", handlers.HealthCheckHandler())
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	mediaPrefix := deps.Config.Blob.PublicURL
	if mediaPrefix == "" {
		mediaPrefix = "/media"
	}
	r.Handle(mediaPrefix+"/*", handlers.MediaFileServer(mediaPrefix))

	RegisterAPIRoutes(r, handlers, deps)

	logging.Info("Router initialized", "media_prefix", mediaPrefix)
	return r
}
