package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	MaxRetries         int
	RetryDelay         time.Duration
	CropThresholdBytes int64

	BrowserNavTimeout time.Duration
	BrowserSettle     time.Duration
	GenerateTimeout   time.Duration
	URLFlowTimeout    time.Duration

	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		RetryDelay:         time.Second * time.Duration(getEnvInt("RETRY_DELAY_SECONDS", 16)),
		CropThresholdBytes: int64(getEnvInt("CROP_THRESHOLD_BYTES", 512000)),
		BrowserNavTimeout:  time.Second * time.Duration(getEnvInt("BROWSER_NAV_TIMEOUT_SECONDS", 30)),
		BrowserSettle:      time.Second * time.Duration(getEnvInt("BROWSER_SETTLE_SECONDS", 2)),
		GenerateTimeout:    time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 60)),
		URLFlowTimeout:     time.Second * time.Duration(getEnvInt("URL_FLOW_TIMEOUT_SECONDS", 90)),
		AllowedOrigins:     []string{getEnv("FRONTEND_ORIGIN", "http://localhost:3000")},
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("MAX_RETRIES must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
