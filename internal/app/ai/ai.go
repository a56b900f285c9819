// internal/app/ai/ai.go
//
// Package ai holds the text-generation backends behind the insight and
// tagging features. Callers never see transport failures: the services on
// top substitute fallback output when Generate errors.
package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Generator produces a completion for a prompt. The system message frames
// the assistant's role; backends that have no separate system channel
// prepend it to the prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Config selects and parameterizes a backend.
type Config struct {
	Provider     string // "gemini" or "local"
	GeminiAPIKey string
	GeminiModel  string // defaults to "gemini-2.0-flash"
	BaseURL      string // local OpenAI-compatible endpoint
	LocalModel   string // defaults to "local-model"
	Timeout      time.Duration
}

const defaultTimeout = 60 * time.Second

// New selects the backend per config. Asking for gemini without an API key
// falls back to the local backend, matching how an unconfigured hosted
// provider should degrade rather than fail startup.
func New(cfg Config, logger *zap.Logger) Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := &http.Client{Timeout: cfg.Timeout}

	if strings.EqualFold(cfg.Provider, "gemini") {
		if cfg.GeminiAPIKey != "" {
			return newGemini(cfg, client, logger)
		}
		logger.Warn("gemini selected but no API key configured, using local backend")
	}
	return newLocal(cfg, client, logger)
}
