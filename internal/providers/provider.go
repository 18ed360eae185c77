// Package providers builds multimodal chat-completion requests and sends
// them to a vision-capable model.
package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Transport performs one chat-completion call.
//
// Implementations return the decoded completion envelope on a 2xx response.
// Anything else is reported as a *TransportError.
type Transport interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatCompletion, error)
}

// Transport type names accepted by New.
const (
	TransportHTTP   = "http"
	TransportOpenAI = "openai"
	TransportMock   = "mock"
)

// DefaultBaseURL is the chat-completions API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config selects and configures a Transport.
type Config struct {
	Type              string // "http" (default), "openai", "mock"
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerMinute int // 0 disables client-side rate limiting
	Logger            *slog.Logger
}

// New creates the Transport named by cfg.Type.
func New(cfg Config) (Transport, error) {
	var t Transport
	switch cfg.Type {
	case "", TransportHTTP:
		t = NewHTTPClient(HTTPConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Logger:     cfg.Logger,
		})
	case TransportOpenAI:
		t = NewOpenAIClient(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Logger:     cfg.Logger,
		})
	case TransportMock:
		t = NewMockClient()
	default:
		return nil, fmt.Errorf("unknown transport type: %q", cfg.Type)
	}

	if cfg.RequestsPerMinute > 0 {
		t = RateLimited(t, NewRateLimiter(cfg.RequestsPerMinute))
	}
	return t, nil
}
