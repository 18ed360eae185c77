package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // optional, SDK default otherwise
	Timeout    time.Duration
	MaxRetries int          // SDK retry attempts
	HTTPClient *http.Client // optional (tests)
	Logger     *slog.Logger
}

// OpenAIClient sends chat-completion requests through the official OpenAI SDK.
type OpenAIClient struct {
	client openai.Client
	logger *slog.Logger
}

// NewOpenAIClient creates an OpenAIClient.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		logger: cfg.Logger,
	}
}

// Complete maps req onto SDK params and converts the SDK response back.
func (c *OpenAIClient) Complete(ctx context.Context, req *ChatRequest) (*ChatCompletion, error) {
	params, err := toOpenAIParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	c.logger.Debug("providers.openai.complete",
		"id", resp.ID,
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fromOpenAICompletion(resp), nil
}

func toOpenAIParams(req *ChatRequest) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role != RoleUser {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unsupported message role: %q", m.Role)
		}
		parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Content))
		for _, b := range m.Content {
			switch b.Type {
			case BlockText:
				parts = append(parts, openai.TextContentPart(b.Text))
			case BlockImageURL:
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    b.ImageURL.URL,
					Detail: b.ImageURL.Detail,
				}))
			default:
				return openai.ChatCompletionNewParams{}, fmt.Errorf("unknown content block type: %q", b.Type)
			}
		}
		messages = append(messages, openai.UserMessage(parts))
	}

	return openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(req.Model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(req.MaxTokens)),
	}, nil
}

func fromOpenAICompletion(resp *openai.ChatCompletion) *ChatCompletion {
	out := &ChatCompletion{
		ID:                resp.ID,
		Object:            string(resp.Object),
		Created:           resp.Created,
		Model:             resp.Model,
		SystemFingerprint: resp.SystemFingerprint,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, ch := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Index: int(ch.Index),
			Message: ReplyMessage{
				Role:    string(ch.Message.Role),
				Content: ch.Message.Content,
			},
			FinishReason: string(ch.FinishReason),
		})
	}
	return out
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Message
		}
		return &TransportError{StatusCode: apiErr.StatusCode, Body: body, Err: err}
	}
	return &TransportError{Err: err}
}
