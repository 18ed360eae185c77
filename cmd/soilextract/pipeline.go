package main

import (
	"log/slog"

	"github.com/soilextract/soilextract/internal/config"
	"github.com/soilextract/soilextract/internal/pipeline"
	"github.com/soilextract/soilextract/internal/prompts"
	"github.com/soilextract/soilextract/internal/prompts/soilreport"
	"github.com/soilextract/soilextract/internal/providers"
	"github.com/soilextract/soilextract/internal/render"
)

// newPipeline wires a Pipeline from configuration.
func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	transport, err := providers.New(cfg.ProviderConfig(logger))
	if err != nil {
		return nil, err
	}

	resolver := prompts.NewResolver(logger)
	soilreport.RegisterPrompts(resolver)
	if cfg.PromptFile != "" {
		resolver.SetOverride(soilreport.PromptKey, cfg.PromptFile)
	}
	prompt, err := soilreport.Prompt(resolver)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Pages:         render.NewRasterizer(cfg.RenderConfig(logger)),
		Encoder:       cfg.Encoder(),
		Transport:     transport,
		Prompt:        prompt,
		Model:         cfg.Model,
		MaxTokens:     cfg.MaxTokens,
		EncodeWorkers: cfg.Encode.Workers,
		Logger:        logger,
	}
	if cfg.Render.Preflight {
		opts.Preflight = render.Preflight
	}
	return pipeline.New(opts), nil
}
