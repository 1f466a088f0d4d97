package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/confsched/companion/internal/api"
	"github.com/confsched/companion/internal/auth"
	"github.com/confsched/companion/internal/config"
	"github.com/confsched/companion/internal/http/ratelimit"
	"github.com/confsched/companion/internal/metrics"
)

// HealthChecker reports backing-store reachability for the readiness probe.
// It is nil when the file storage backend is in use.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter wires the JSON API, exports, and operational endpoints.
// verifier may be nil (no authentication required for favorites mutations).
func NewRouter(cfg *config.Config, handler *api.Handler, verifier *auth.Verifier, health HealthChecker) http.Handler {
	r := chi.NewRouter()

	// Favorites mutations and manual refreshes: 5 requests per second,
	// burst of 10. Reads are unthrottled.
	writeRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				http.Error(w, "unready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/schedule", handler.Meta)
		r.Get("/sessions", handler.Sessions)
		r.Get("/sessions/now", handler.SessionsNow)
		r.Get("/sessions/{code}", handler.Session)
		r.Get("/days", handler.Days)
		r.Get("/rooms/now", handler.RoomsNow)
		r.Get("/favs", handler.Favs)

		r.Group(func(r chi.Router) {
			r.Use(writeRateLimiter.Middleware())
			r.Use(verifier.RequireBearer)
			r.Put("/favs/{code}", handler.Fav)
			r.Delete("/favs/{code}", handler.Unfav)
			r.Post("/favs/merge", handler.MergeFavs)
			r.Post("/schedule/refresh", handler.Refresh)
		})
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/schedule.ics", handler.ExportSchedule)
		r.Get("/faved.ics", handler.ExportFaved)
	})

	return r
}
