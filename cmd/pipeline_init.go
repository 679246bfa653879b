package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/forecast-cli/internal/pipeline"
	"github.com/sells-group/forecast-cli/pkg/openrouter"
)

// newPipeline wires the OpenRouter client and orchestrator from the loaded
// configuration. The credential is passed in explicitly; nothing reads it
// from ambient state after this point.
func newPipeline() (*pipeline.Pipeline, error) {
	if cfg.OpenRouter.Key == "" {
		return nil, eris.New("openrouter key is not configured (set FORECAST_OPENROUTER_KEY or openrouter.key)")
	}

	opts := []openrouter.Option{
		openrouter.WithBaseURL(cfg.OpenRouter.BaseURL),
		openrouter.WithHeaders(cfg.OpenRouter.Referer, cfg.OpenRouter.Title),
	}
	if cfg.OpenRouter.RateLimit > 0 {
		opts = append(opts, openrouter.WithRateLimit(cfg.OpenRouter.RateLimit))
	}

	client := openrouter.NewClient(cfg.OpenRouter.Key, opts...)
	return pipeline.New(cfg, client), nil
}
