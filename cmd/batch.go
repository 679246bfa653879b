package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/pipeline"
)

var (
	batchFile  string
	batchLimit int
)

// batchEntry is one named brief in the batch file.
type batchEntry struct {
	Name        string `yaml:"name"`
	Brief       string `yaml:"brief"`
	Constraints string `yaml:"constraints"`
}

// batchSpec is the YAML shape of a briefs file.
type batchSpec struct {
	Briefs []batchEntry `yaml:"briefs"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the pipeline for every brief in a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entries, err := loadBatchFile(batchFile)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(entries) > batchLimit {
			entries = entries[:batchLimit]
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		return processBatch(ctx, p, entries, cfg.Batch.MaxConcurrentRuns, cfg.Output.Dir)
	},
}

// loadBatchFile parses the YAML briefs file and drops entries with no brief
// text so one blank row does not abort the whole batch.
func loadBatchFile(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: read briefs file")
	}

	var spec batchSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrap(err, "batch: parse briefs file")
	}

	var entries []batchEntry
	for _, e := range spec.Briefs {
		if strings.TrimSpace(e.Brief) == "" {
			zap.L().Warn("batch: skipping entry with empty brief", zap.String("name", e.Name))
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, eris.New("batch: briefs file holds no usable entries")
	}
	return entries, nil
}

// processBatch runs each entry as an independent pipeline run. Runs share
// the client (and its rate limiter) but no per-run state; failures are
// logged per entry and do not stop the remaining runs.
func processBatch(ctx context.Context, p *pipeline.Pipeline, entries []batchEntry, concurrency int, outDir string) error {
	zap.L().Info("processing batch",
		zap.Int("briefs", len(entries)),
		zap.Int("concurrency", concurrency),
	)

	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			result, err := p.Run(gctx, model.Brief{Text: entry.Brief, Constraints: entry.Constraints})
			if err != nil {
				failed.Add(1)
				zap.L().Error("batch: run failed",
					zap.String("name", entry.Name),
					zap.Error(err),
				)
				return nil
			}

			dir := outDir
			if entry.Name != "" {
				dir = filepath.Join(outDir, entry.Name)
			}
			if _, err := pipeline.WriteExports(dir, result.Final); err != nil {
				failed.Add(1)
				zap.L().Error("batch: export failed",
					zap.String("name", entry.Name),
					zap.Error(err),
				)
				return nil
			}

			zap.L().Info("batch: run complete",
				zap.String("name", entry.Name),
				zap.String("run_id", result.ID),
				zap.Int64("duration_ms", result.Duration),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch: wait")
	}

	if n := failed.Load(); n > 0 {
		return eris.Errorf("batch: %d of %d runs failed", n, len(entries))
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "YAML file with briefs (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of briefs to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
