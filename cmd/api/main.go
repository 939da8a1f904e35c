package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fitroom/internal/http/handlers"
	"fitroom/internal/http/httpapi"
	"fitroom/internal/infra"
	"fitroom/internal/providers/genai"
	"fitroom/internal/scrape"
	"fitroom/internal/tryon"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		HTTPClient: &http.Client{
			// One generation attempt must fit inside the URL-flow deadline.
			Timeout: cfg.URLFlowTimeout,
		},
		Logger: logger,
	})

	shooter := scrape.NewChromeScreenshotter(cfg.BrowserNavTimeout, cfg.BrowserSettle, logger)
	extractor := scrape.NewExtractor(&http.Client{Timeout: 20 * time.Second}, shooter, logger)

	service := tryon.NewService(tryon.ServiceOptions{
		Generator: client,
		Extractor: extractor,
		Policy: tryon.Policy{
			MaxAttempts: cfg.MaxRetries,
			Delay:       cfg.RetryDelay,
		},
		CropThresholdBytes: cfg.CropThresholdBytes,
		Logger:             logger,
	})

	app := handlers.NewApp(service, cfg, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("model", cfg.GeminiModel).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
