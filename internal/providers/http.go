package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL    string        // defaults to DefaultBaseURL
	APIKey     string        // sent as a Bearer token
	Timeout    time.Duration // per attempt, defaults to 120s
	MaxRetries int           // extra attempts after the first, 0 = none
	RetryDelay time.Duration // initial backoff, defaults to 1s
	HTTPClient *http.Client  // optional (tests)
	Logger     *slog.Logger
}

// HTTPClient posts chat-completion requests as plain JSON over HTTP.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an HTTPClient.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// Complete sends req to {base}/chat/completions.
// Network errors, 429 and 5xx responses are retried up to MaxRetries times.
func (c *HTTPClient) Complete(ctx context.Context, req *ChatRequest) (*ChatCompletion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqID := uuid.New().String()
	start := time.Now()
	var completion *ChatCompletion

	err = retry.Do(
		func() error {
			var err error
			completion, err = c.post(ctx, reqID, body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries+1)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(30*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			te, ok := IsTransportError(err)
			return ok && te.Retryable()
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("providers.http.retry", "req_id", reqID, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		if _, ok := IsTransportError(err); !ok {
			err = &TransportError{Err: err}
		}
		return nil, err
	}

	c.logger.Debug("providers.http.complete",
		"req_id", reqID,
		"model", completion.Model,
		"choices", len(completion.Choices),
		"total_tokens", completion.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return completion, nil
}

func (c *HTTPClient) post(ctx context.Context, reqID string, body []byte) (*ChatCompletion, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("providers.http.response", "req_id", reqID, "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var completion ChatCompletion
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return &completion, nil
}
