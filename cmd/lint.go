package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/typelint/formatter"
	"github.com/gnolang/typelint/internal"
	tt "github.com/gnolang/typelint/internal/types"
	"github.com/gnolang/typelint/lint"
)

var (
	ignoreRules     string
	ignorePaths     string
	lintJsonOutput  bool
	lintSarifOutput bool
	outPath         string
	watchMode       bool
	cacheDir        string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the normal lint process",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		engine, err := lint.New(watchRoot(args[0]), cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize lint engine", zap.Error(err))
		}

		if ignoreRules != "" {
			rules := strings.Split(ignoreRules, ",")
			for _, rule := range rules {
				engine.IgnoreRule(strings.TrimSpace(rule))
			}
		}

		if ignorePaths != "" {
			paths := strings.Split(ignorePaths, ",")
			for _, path := range paths {
				engine.IgnorePath(strings.TrimSpace(path))
			}
		}

		if watchMode {
			runWatch(logger, engine)
			return
		}

		var cache *internal.Cache
		if cacheDir != "" {
			cache, err = internal.NewCache(cacheDir, internal.DefaultCacheMaxAge, cfgFile)
			if err != nil {
				logger.Fatal("Failed to open cache", zap.Error(err))
			}
			engine.UseCache(cache)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		runNormalLintProcess(ctx, logger, engine, args, outputFormat(), outPath, cache)
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	lintCmd.Flags().BoolVar(&lintJsonOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().BoolVar(&lintSarifOutput, "sarif", false, "Output issues as a SARIF 2.1.0 report")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON or SARIF)")
	lintCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-lint files when they change")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory caching results for unchanged files")
	lintCmd.MarkFlagsMutuallyExclusive("json", "sarif")
}

type format int

const (
	formatText format = iota
	formatJSON
	formatSarif
)

func outputFormat() format {
	switch {
	case lintSarifOutput:
		return formatSarif
	case lintJsonOutput:
		return formatJSON
	}
	return formatText
}

func runNormalLintProcess(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, f format, out string, cache *internal.Cache) {
	if f != formatText {
		lint.ProgressOutput = io.Discard
	}

	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if cache != nil {
		if err := cache.Save(); err != nil {
			logger.Warn("Error saving cache", zap.Error(err))
		}
	}
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	if err := printIssues(logger, issues, f, out); err != nil {
		logger.Error("Error writing report", zap.Error(err))
		os.Exit(1)
	}

	if hasErrors(issues) {
		os.Exit(1)
	}
}

func hasErrors(issues []tt.Issue) bool {
	for _, issue := range issues {
		if issue.Severity == tt.SeverityError {
			return true
		}
	}
	return false
}

func printIssues(logger *zap.Logger, issues []tt.Issue, f format, out string) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case formatJSON:
		data, err = formatter.JSON(issues)
	case formatSarif:
		data, err = formatter.NewSarifReport(issues).ToJSON()
	default:
		printText(logger, issues)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error marshalling issues: %w", err)
	}

	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	return nil
}

func printText(logger *zap.Logger, issues []tt.Issue) {
	issuesByFile := formatter.GroupByFile(issues)

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		fileIssues := issuesByFile[filename]
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		output := formatter.GenerateFormattedIssue(fileIssues, sourceCode)
		fmt.Println(output)
	}
}

// watchRoot returns the directory watched for path.
func watchRoot(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func runWatch(logger *zap.Logger, engine *internal.Engine) {
	engine.OnIssues(func(filename string, issues []tt.Issue) {
		if len(issues) == 0 {
			logger.Info("no issues found", zap.String("file", filename))
			return
		}
		printText(logger, issues)
	})

	if err := engine.StartWatching(); err != nil {
		logger.Fatal("Failed to start watching", zap.Error(err))
	}
	logger.Info("watching for changes, press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := engine.StopWatching(); err != nil {
		logger.Error("Error stopping watcher", zap.Error(err))
	}
}
