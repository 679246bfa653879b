// Package pipeline threads a company brief through the three-stage
// research -> generate -> refresh completion sequence and parses the
// final output into question records.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/forecast-cli/internal/config"
	"github.com/sells-group/forecast-cli/internal/cost"
	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/pkg/openrouter"
)

// Stage names, used in logs and error context.
const (
	stageResearch = "research"
	stageGenerate = "generate"
	stageRefresh  = "refresh"
)

// Pipeline orchestrates one run of the question-building sequence. The
// configuration is read-only for the duration of a run; concurrent runs
// may share one Pipeline because no per-run state lives on it.
type Pipeline struct {
	cfg    *config.Config
	client openrouter.Client
	calc   *cost.Calculator
}

// New creates a Pipeline with its completion client.
func New(cfg *config.Config, client openrouter.Client) *Pipeline {
	return &Pipeline{cfg: cfg, client: client, calc: cost.NewCalculator(cost.DefaultRates())}
}

// WithConfig returns a Pipeline sharing the receiver's client but using
// cfg instead. Callers use it to apply per-run overrides without mutating
// the shared configuration.
func (p *Pipeline) WithConfig(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, client: p.client, calc: p.calc}
}

// Run executes research -> generate -> optional refresh for one brief.
// Stages are strictly sequential: each consumes the previous stage's
// normalized output, and the first failure aborts the run with no partial
// result. When the refresh pass is disabled, Final equals Draft exactly.
func (p *Pipeline) Run(ctx context.Context, brief model.Brief) (*model.RunResult, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	result := &model.RunResult{ID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", result.ID))
	log.Info("pipeline: starting run",
		zap.Int("questions", p.cfg.Output.Questions),
		zap.Bool("refresh", p.cfg.Output.Refresh),
	)
	start := time.Now()

	full := brief.Full()

	research, err := p.completeStage(ctx, log, result, stageResearch,
		p.cfg.Stages.Research, p.cfg.Model.ResearchOnline,
		RenderResearch(full))
	if err != nil {
		return nil, err
	}
	result.Research = research

	draft, err := p.completeStage(ctx, log, result, stageGenerate,
		p.cfg.Stages.Generate, p.cfg.Model.GenerateOnline,
		RenderGenerate(full, research, p.cfg.Output.Questions))
	if err != nil {
		return nil, err
	}
	result.Draft = draft

	result.Final = draft
	if p.cfg.Output.Refresh {
		final, err := p.completeStage(ctx, log, result, stageRefresh,
			p.cfg.Stages.Refresh, p.cfg.Model.RefreshOnline,
			RenderRefresh(draft, full))
		if err != nil {
			return nil, err
		}
		result.Final = final
	}

	result.Duration = time.Since(start).Milliseconds()
	log.Info("pipeline: run complete",
		zap.Int64("duration_ms", result.Duration),
		zap.Int("parsed_questions", len(ParseQuestions(result.Final))),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Float64("cost_usd", result.CostUSD),
	)
	return result, nil
}

// completeStage issues one single-turn completion under the stage's timeout
// and returns the normalized response text. One attempt, no retries. Token
// usage and the estimated spend accumulate onto the run result.
func (p *Pipeline) completeStage(ctx context.Context, log *zap.Logger, result *model.RunResult, name string, sc config.StageConfig, online bool, prompt string) (string, error) {
	modelID := openrouter.ModelID(p.cfg.Model.Base, online)

	sctx := ctx
	if sc.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, time.Duration(sc.TimeoutSecs)*time.Second)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.client.ChatCompletion(sctx, openrouter.ChatCompletionRequest{
		Model:       modelID,
		Messages:    []openrouter.Message{{Role: "user", Content: prompt}},
		Temperature: &sc.Temperature,
		MaxTokens:   &sc.MaxTokens,
	})
	if err != nil {
		log.Error("pipeline: stage failed",
			zap.String("stage", name),
			zap.String("model", modelID),
			zap.Error(err),
		)
		return "", eris.Wrap(err, "pipeline: "+name+" stage")
	}

	text := resp.Text()
	if text == "" {
		return "", eris.New("pipeline: " + name + " stage: empty completion")
	}

	result.PromptTokens += resp.Usage.PromptTokens
	result.CompletionTokens += resp.Usage.CompletionTokens
	result.CostUSD += p.calc.Completion(modelID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	log.Info("pipeline: stage complete",
		zap.String("stage", name),
		zap.String("model", modelID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return Normalize(text), nil
}
