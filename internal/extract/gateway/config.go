// Package gateway implements extract.Completer against a chat-completions
// style AI gateway.
package gateway

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the gateway client.
type Config struct {
	APIKey      string        // if empty, falls back to env AI_GATEWAY_API_KEY
	BaseURL     string        // default https://ai.gateway.lovable.dev/v1
	Model       string        // e.g., "google/gemini-2.5-flash"
	Temperature float32       // kept low; extraction should be deterministic
	Timeout     time.Duration // http client timeout
}

// Client talks to the gateway's /chat/completions endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("AI_GATEWAY_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ai.gateway.lovable.dev/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "google/gemini-2.5-flash"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}
