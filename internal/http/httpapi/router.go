package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"translator/internal/http/handlers"
	"translator/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.RateLimit(app.Config.APIRateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/translations", func(r chi.Router) {
		r.Get("/current", app.TranslationCurrent)
		r.Post("/trigger", app.TranslationsTrigger)
	})
	r.Post("/v1/hooks/content-saved", app.ContentSaved)
	r.Get("/v1/jobs/{id}", app.JobStatus)
	r.Get("/v1/stats/summary", app.StatsSummary)

	return r
}
