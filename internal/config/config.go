package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string `validate:"required,numeric"`

	// AppID namespaces every per-user collection so several deployments
	// can share one backend.
	AppID string `validate:"required"`

	GCPProjectID string `validate:"required_if=StorageBackend firestore"`
	GCPLocation  string

	LLMProvider  string `validate:"oneof=mock gemini vertex"`
	GeminiAPIKey string `validate:"required_if=LLMProvider gemini"`
	ModelName    string `validate:"required"`

	StorageBackend string `validate:"oneof=memory firestore"`

	JWTSecret string        `validate:"required,min=16"`
	TokenTTL  time.Duration `validate:"gt=0"`

	LogFilePath string
	LogJSON     bool

	CorsAllowedOrigins string

	OtelEnabled  bool
	OtelEndpoint string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// Load reads .env (when present) and the environment, then validates
// the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	modeStr := getEnv("MINDCONNECT_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultLLM := "mock"
	defaultStorage := "memory"
	if mode == ModeGCP {
		defaultLLM = "vertex"
		defaultStorage = "firestore"
	}

	cfg := &Config{
		Mode: mode,

		Port:  getEnv("MINDCONNECT_PORT", "8080"),
		AppID: getEnv("MINDCONNECT_APP_ID", "horizon-mvp-final"),

		GCPProjectID: getEnv("MINDCONNECT_GCP_PROJECT", ""),
		GCPLocation:  getEnv("MINDCONNECT_GCP_LOCATION", "us-central1"),

		LLMProvider:  getEnv("MINDCONNECT_LLM_PROVIDER", defaultLLM),
		GeminiAPIKey: getEnv("MINDCONNECT_GEMINI_API_KEY", ""),
		ModelName:    getEnv("MINDCONNECT_MODEL_NAME", "gemini-2.5-flash-lite"),

		StorageBackend: getEnv("MINDCONNECT_STORAGE_BACKEND", defaultStorage),

		JWTSecret: getEnv("MINDCONNECT_JWT_SECRET", ""),
		TokenTTL:  getDurationEnv("MINDCONNECT_TOKEN_TTL", 7*24*time.Hour),

		LogFilePath: getEnv("MINDCONNECT_LOG_FILE", "mindconnect.log"),
		LogJSON:     getBoolEnv("MINDCONNECT_LOG_JSON", mode == ModeGCP),

		CorsAllowedOrigins: getEnv("MINDCONNECT_CORS_ORIGINS", "*"),

		OtelEnabled:  getBoolEnv("OTEL_ENABLED", false),
		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	}

	// Local mode gets a throwaway signing key so `go run` works out of the box.
	if cfg.JWTSecret == "" && cfg.Mode == ModeLocal {
		cfg.JWTSecret = "local-development-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements such as the GCP project being
// set for Firestore storage.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LLMProvider == "vertex" && c.GCPProjectID == "" {
		return fmt.Errorf("invalid config: MINDCONNECT_GCP_PROJECT must be set for the vertex provider")
	}
	return nil
}
