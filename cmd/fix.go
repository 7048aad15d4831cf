package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/typelint/internal/fixer"
	tt "github.com/gnolang/typelint/internal/types"
	"github.com/gnolang/typelint/lint"
)

var (
	dryRun              bool
	confidenceThreshold float64
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// initialize the lint engine
		engine, err := lint.New(".", cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize lint engine", zap.Error(err))
		}

		runAutoFix(ctx, logger, engine, args, dryRun, confidenceThreshold)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().Float64Var(&confidenceThreshold, "confidence", 0.75, "Confidence threshold for auto-fixing (0.0 to 1.0)")
}

func runAutoFix(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, dryRun bool, confidenceThreshold float64) {
	fix := fixer.New(dryRun, confidenceThreshold, logger)
	relint := func(filename string, content []byte) ([]tt.Issue, error) {
		return engine.RunSource(content)
	}

	for _, path := range paths {
		issues, err := lint.ProcessPath(ctx, logger, engine, path, lint.ProcessFile)
		if err != nil {
			logger.Error("error processing path", zap.String("path", path), zap.Error(err))
			continue
		}

		// fix each file that has at least one fixable issue
		for _, filename := range fixableFiles(issues) {
			if err := ctx.Err(); err != nil {
				logger.Error("fix interrupted", zap.Error(err))
				return
			}
			if err := fix.Fix(filename, relint); err != nil {
				logger.Error("error fixing issues", zap.String("file", filename), zap.Error(err))
			}
		}
	}
}

func fixableFiles(issues []tt.Issue) []string {
	var files []string
	seen := make(map[string]bool)
	for _, issue := range issues {
		if len(issue.Edits) == 0 || seen[issue.Filename] {
			continue
		}
		seen[issue.Filename] = true
		files = append(files, issue.Filename)
	}
	return files
}
