package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"fitroom/internal/domain"
	"fitroom/internal/infra"
	"fitroom/internal/middleware"
	"fitroom/internal/tryon"
)

// App bundles the handler dependencies: the pipeline facade plus the config
// that carries the per-flow timeouts.
type App struct {
	Service *tryon.Service
	Cfg     *infra.Config
	Logger  zerolog.Logger
}

// NewApp builds the handler container.
func NewApp(service *tryon.Service, cfg *infra.Config, logger zerolog.Logger) *App {
	return &App{Service: service, Cfg: cfg, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) image(w http.ResponseWriter, asset domain.ImageAsset) {
	mime := asset.MimeType
	if mime == "" {
		mime = "image/png"
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}

// failure maps a classified pipeline error onto a status code and a short
// machine-readable body. The kind distinguishes "fix your input" from
// "retry later" from "server-side problem".
func (a *App) failure(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	a.Logger.Error().
		Err(err).
		Str("kind", string(kind)).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Msg("request failed")

	a.json(w, status, map[string]string{
		"error":   string(kind),
		"message": domain.MessageOf(err),
	})
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindDecode:
		return http.StatusBadRequest
	case domain.KindNoImagesFound:
		return http.StatusUnprocessableEntity
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindFetch:
		return http.StatusBadGateway
	case domain.KindNoImageReturned:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
