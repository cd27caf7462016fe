package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Properties *PropertyHandler
	Owners     *OwnerHandler
	Health     *HealthHandler
	CORS       config.CORSConfig
	// RateLimiter is optional; when nil or WriteRateLimit is zero, writes are unthrottled.
	RateLimiter    *middleware.RateLimiter
	WriteRateLimit int
	Logger         *slog.Logger
}

// NewRouter builds the HTTP handler: probes at the root, the API under /api/v1.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(d.CORS),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, ErrorBody{Code: CodeValidation, Message: "method not allowed"})
	})

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Chain(middleware.Actor(), d.writeLimit()))

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", d.Properties.List)
			r.Post("/", d.Properties.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", d.Properties.Get)
				r.Patch("/", d.Properties.Update)
				r.Delete("/", d.Properties.Delete)
				r.Put("/price", d.Properties.ChangePrice)
				r.Get("/traces", d.Properties.Traces)
				r.Post("/images", d.Properties.AddImage)
				r.Delete("/images/{imageId}", d.Properties.RemoveImage)
			})
		})

		r.Route("/owners", func(r chi.Router) {
			r.Get("/", d.Owners.List)
			r.Post("/", d.Owners.Create)
			r.Get("/{id}", d.Owners.Get)
			r.Patch("/{id}", d.Owners.Update)
			r.Delete("/{id}", d.Owners.Delete)
		})
	})

	return r
}

// writeLimit returns nil when write limiting is disabled.
func (d RouterDeps) writeLimit() middleware.Middleware {
	if d.RateLimiter == nil || d.WriteRateLimit <= 0 {
		return nil
	}
	return d.RateLimiter.LimitWrites(d.WriteRateLimit)
}
