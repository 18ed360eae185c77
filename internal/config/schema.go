package config

// Config holds soilextract configuration.
// Stored at: ./config.yaml or {home}/config.yaml
type Config struct {
	Transport  TransportCfg `mapstructure:"transport" yaml:"transport"`
	Model      string       `mapstructure:"model" yaml:"model"`
	MaxTokens  int          `mapstructure:"max_tokens" yaml:"max_tokens"`
	Render     RenderCfg    `mapstructure:"render" yaml:"render"`
	Encode     EncodeCfg    `mapstructure:"encode" yaml:"encode"`
	PromptFile string       `mapstructure:"prompt_file" yaml:"prompt_file"` // optional prompt template override
	LogLevel   string       `mapstructure:"log_level" yaml:"log_level"`     // debug, info, warn, error
}

// TransportCfg configures the chat-completions transport.
type TransportCfg struct {
	Type              string `mapstructure:"type" yaml:"type"` // "http", "openai", "mock"
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	APIKey            string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// RenderCfg bounds rendered page size.
type RenderCfg struct {
	MaxWidth  int  `mapstructure:"max_width" yaml:"max_width"`
	MaxHeight int  `mapstructure:"max_height" yaml:"max_height"`
	Preflight bool `mapstructure:"preflight" yaml:"preflight"` // parse with pdfcpu before rendering
}

// EncodeCfg configures PNG encoding.
type EncodeCfg struct {
	Workers     int    `mapstructure:"workers" yaml:"workers"`
	Compression string `mapstructure:"compression" yaml:"compression"` // default, none, speed, best
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportCfg{
			Type:           "http",
			BaseURL:        "https://api.openai.com/v1",
			APIKey:         "${OPENAI_API_KEY}",
			TimeoutSeconds: 120,
		},
		Model:     "gpt-4o-mini",
		MaxTokens: 1500,
		Render: RenderCfg{
			MaxWidth:  1024,
			MaxHeight: 1024,
			Preflight: true,
		},
		Encode: EncodeCfg{
			Workers:     1,
			Compression: "default",
		},
		LogLevel: "info",
	}
}
