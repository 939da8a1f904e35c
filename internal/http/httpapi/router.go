package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"fitroom/internal/http/handlers"
	"fitroom/internal/infra"
	"fitroom/internal/middleware"
)

// NewRouter wires the API surface: one health probe and the four try-on
// entry points, each a thin multipart adapter over the pipeline facade.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, middleware.RequestID, middleware.Logger(logger), chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/api/health", app.Health)

	r.Route("/api/try-on", func(r chi.Router) {
		r.Post("/", app.TryOnDescribe)
		r.Post("/image", app.TryOnImage)
		r.Post("/url", app.TryOnURL)
		r.Post("/background", app.TryOnBackground)
	})

	return r
}
