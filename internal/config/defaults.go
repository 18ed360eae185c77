package config

import (
	"fmt"
	"slices"
)

// Entry documents one configuration key and its default value.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns every configuration key with its default.
// Keys are dotted viper paths; the env override of a key is
// SOILEXTRACT_ followed by the key upper-cased with dots as underscores.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		{Key: "transport.type", Value: d.Transport.Type, Description: "Transport used for the model call: http, openai or mock"},
		{Key: "transport.base_url", Value: d.Transport.BaseURL, Description: "Chat-completions API root; requests go to {base_url}/chat/completions"},
		{Key: "transport.api_key", Value: d.Transport.APIKey, Description: "Bearer token (uses environment variable)"},
		{Key: "transport.timeout_seconds", Value: d.Transport.TimeoutSeconds, Description: "HTTP timeout in seconds per attempt"},
		{Key: "transport.max_retries", Value: d.Transport.MaxRetries, Description: "Retries after network errors, 429 and 5xx responses"},
		{Key: "transport.requests_per_minute", Value: d.Transport.RequestsPerMinute, Description: "Client-side rate limit, 0 disables"},
		{Key: "model", Value: d.Model, Description: "Vision model identifier"},
		{Key: "max_tokens", Value: d.MaxTokens, Description: "Maximum tokens in the model reply"},
		{Key: "render.max_width", Value: d.Render.MaxWidth, Description: "Maximum rendered page width in pixels"},
		{Key: "render.max_height", Value: d.Render.MaxHeight, Description: "Maximum rendered page height in pixels"},
		{Key: "render.preflight", Value: d.Render.Preflight, Description: "Parse each PDF with pdfcpu before rendering"},
		{Key: "encode.workers", Value: d.Encode.Workers, Description: "Concurrent PNG encoders per extraction"},
		{Key: "encode.compression", Value: d.Encode.Compression, Description: "PNG compression: default, none, speed or best"},
		{Key: "prompt_file", Value: d.PromptFile, Description: "Path to a prompt template replacing the embedded one"},
		{Key: "log_level", Value: d.LogLevel, Description: "Log level: debug, info, warn or error"},
	}
}

// GetDefault returns the default value for a key.
func GetDefault(key string) (any, error) {
	i := slices.IndexFunc(DefaultEntries(), func(e Entry) bool { return e.Key == key })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDefault, key)
	}
	return DefaultEntries()[i].Value, nil
}
