package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/pipeline"
)

var (
	runBrief           string
	runBriefFile       string
	runConstraints     string
	runConstraintsFile string
	runQuestions       int
	runNoRefresh       bool
	runOutputDir       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the question pipeline for a single brief",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		brief, err := briefFromFlags()
		if err != nil {
			return err
		}

		// Flag overrides onto the run configuration.
		if cmd.Flags().Changed("questions") {
			cfg.Output.Questions = runQuestions
		}
		if runNoRefresh {
			cfg.Output.Refresh = false
		}
		if runOutputDir != "" {
			cfg.Output.Dir = runOutputDir
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		result, err := p.Run(ctx, brief)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		paths, err := pipeline.WriteExports(cfg.Output.Dir, result.Final)
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("run_id", result.ID),
			zap.Int("questions", len(pipeline.ParseQuestions(result.Final))),
			zap.Strings("exports", paths),
		)

		fmt.Fprintln(os.Stdout, result.Final)
		return nil
	},
}

// briefFromFlags assembles the Brief from the flag/file inputs. File
// contents win over the inline flags when both are given.
func briefFromFlags() (model.Brief, error) {
	brief := model.Brief{Text: runBrief, Constraints: runConstraints}

	if runBriefFile != "" {
		data, err := os.ReadFile(runBriefFile)
		if err != nil {
			return model.Brief{}, eris.Wrap(err, "read brief file")
		}
		brief.Text = string(data)
	}
	if runConstraintsFile != "" {
		data, err := os.ReadFile(runConstraintsFile)
		if err != nil {
			return model.Brief{}, eris.Wrap(err, "read constraints file")
		}
		brief.Constraints = string(data)
	}

	if strings.TrimSpace(brief.Text) == "" {
		return model.Brief{}, eris.New("a company brief is required (--brief or --brief-file)")
	}
	return brief, nil
}

func init() {
	runCmd.Flags().StringVar(&runBrief, "brief", "", "company/sector brief text")
	runCmd.Flags().StringVar(&runBriefFile, "brief-file", "", "path to a file holding the brief")
	runCmd.Flags().StringVar(&runConstraints, "constraints", "", "optional constraints text")
	runCmd.Flags().StringVar(&runConstraintsFile, "constraints-file", "", "path to a file holding constraints")
	runCmd.Flags().IntVar(&runQuestions, "questions", 24, "number of questions to request")
	runCmd.Flags().BoolVar(&runNoRefresh, "no-refresh", false, "skip the final quality pass")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "directory for txt/csv/xlsx exports (default from config)")
	rootCmd.AddCommand(runCmd)
}
